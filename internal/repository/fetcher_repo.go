package repository

import (
	"context"

	"github.com/user/engagement-scraper/internal/entity"
)

// Fetcher defines the contract for retrieving a page's raw markup.
type Fetcher interface {
	// Fetch performs one logical retrieval, retrying transient failures.
	// Errors returned match entity.ErrFetchFailed.
	Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchResult, error)
}
