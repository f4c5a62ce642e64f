package repository

import (
	"context"

	"github.com/user/engagement-scraper/internal/entity"
)

// FailedScrapeRepository defines the interface for managing URLs whose fetch failed.
type FailedScrapeRepository interface {
	// SaveOrUpdate creates or updates a record for a failed URL.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedScrape) error
	// FindRetryable retrieves a batch of URLs that are due for a retry.
	FindRetryable(ctx context.Context, limit int) ([]*entity.FailedScrape, error)
	// Delete removes a failed URL record, typically after a successful scrape.
	Delete(ctx context.Context, url string) error
}
