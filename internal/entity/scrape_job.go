package entity

import "time"

// ScrapeJob is a queued request to scrape one URL.
type ScrapeJob struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Credential string    `json:"credential,omitempty"`
	QueuedAt   time.Time `json:"queued_at"`
}

// FailedScrape mirrors the `failed_scrapes` PostgreSQL table schema.
type FailedScrape struct {
	ID                   int64
	URL                  string
	Credential           string
	FailureReason        string
	LastAttemptTimestamp time.Time
	RetryCount           int
	NextRetryAt          time.Time
}
