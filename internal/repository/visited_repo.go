package repository

import (
	"context"
	"time"
)

// VisitedRepository deduplicates URLs queued for scraping within a window.
type VisitedRepository interface {
	// MarkVisited marks a URL as queued with a specific expiry time.
	MarkVisited(ctx context.Context, url string, expiry time.Duration) error
	// IsVisited checks if a URL has been queued recently.
	IsVisited(ctx context.Context, url string) (bool, error)
	// RemoveVisited removes a URL from the set, used for forced scrapes.
	RemoveVisited(ctx context.Context, url string) error
}
