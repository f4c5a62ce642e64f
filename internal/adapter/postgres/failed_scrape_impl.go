package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/engagement-scraper/internal/entity"
)

// FailedScrapeRepoImpl provides a concrete implementation for the FailedScrapeRepository interface using PostgreSQL.
type FailedScrapeRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedScrapeRepo creates a new instance of FailedScrapeRepoImpl.
func NewFailedScrapeRepo(db *pgxpool.Pool) *FailedScrapeRepoImpl {
	return &FailedScrapeRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed URL.
// On conflict it increments retry_count and doubles the retry delay, capped at 64x.
func (r *FailedScrapeRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedScrape) error {
	query := `
		INSERT INTO failed_scrapes (url, credential, failure_reason, last_attempt_timestamp, retry_count, next_retry_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (url) DO UPDATE SET
			credential = EXCLUDED.credential,
			failure_reason = EXCLUDED.failure_reason,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			retry_count = failed_scrapes.retry_count + 1,
			next_retry_at = EXCLUDED.last_attempt_timestamp
				+ (EXCLUDED.next_retry_at - EXCLUDED.last_attempt_timestamp) * power(2, LEAST(failed_scrapes.retry_count, 6));
	`
	_, err := r.db.Exec(ctx, query,
		failed.URL,
		failed.Credential,
		failed.FailureReason,
		failed.LastAttemptTimestamp,
		failed.NextRetryAt,
	)
	return err
}

// FindRetryable retrieves a batch of URLs that are due for a retry.
func (r *FailedScrapeRepoImpl) FindRetryable(ctx context.Context, limit int) ([]*entity.FailedScrape, error) {
	query := `
		SELECT id, url, credential, failure_reason, last_attempt_timestamp, retry_count, next_retry_at
		FROM failed_scrapes
		WHERE next_retry_at <= NOW()
		ORDER BY next_retry_at ASC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []*entity.FailedScrape
	for rows.Next() {
		var f entity.FailedScrape
		if err := rows.Scan(
			&f.ID,
			&f.URL,
			&f.Credential,
			&f.FailureReason,
			&f.LastAttemptTimestamp,
			&f.RetryCount,
			&f.NextRetryAt,
		); err != nil {
			return nil, err
		}
		failed = append(failed, &f)
	}

	return failed, rows.Err()
}

// Delete removes a failed URL record, typically after a successful scrape.
func (r *FailedScrapeRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM failed_scrapes WHERE url = $1;`
	_, err := r.db.Exec(ctx, query, url)
	return err
}
