package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/engagement-scraper/internal/entity"
)

// ErrRecordNotFound is returned when no record exists for a URL.
var ErrRecordNotFound = errors.New("record not found")

// RecordRepository stores extracted records keyed by URL.
type RecordRepository interface {
	// Save stores the record for a URL. If the URL already exists, it is updated.
	Save(ctx context.Context, rec *entity.ExtractedRecord) error
	// FindByURL returns ErrRecordNotFound when the URL was never scraped.
	FindByURL(ctx context.Context, url string) (*entity.ExtractedRecord, error)
	// ListStale returns URLs whose latest record was parsed before the cutoff.
	ListStale(ctx context.Context, before time.Time, limit int) ([]string, error)
}

// RecordCache is a short-lived read-through cache in front of RecordRepository.
type RecordCache interface {
	Get(ctx context.Context, url string) (*entity.ExtractedRecord, error)
	Set(ctx context.Context, rec *entity.ExtractedRecord, ttl time.Duration) error
}
