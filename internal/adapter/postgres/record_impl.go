package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
)

// RecordRepoImpl provides a concrete implementation for the RecordRepository interface using PostgreSQL.
type RecordRepoImpl struct {
	db *pgxpool.Pool
}

// NewRecordRepo creates a new instance of RecordRepoImpl.
func NewRecordRepo(db *pgxpool.Pool) *RecordRepoImpl {
	return &RecordRepoImpl{db: db}
}

// Save stores or updates the record for a URL.
func (r *RecordRepoImpl) Save(ctx context.Context, rec *entity.ExtractedRecord) error {
	query := `
		INSERT INTO extracted_records (url, page_type, title, author, author_id, likes, collections, comments, shares, parse_method, success, error, parsed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (url) DO UPDATE SET
			page_type = EXCLUDED.page_type,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			author_id = EXCLUDED.author_id,
			likes = EXCLUDED.likes,
			collections = EXCLUDED.collections,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			parse_method = EXCLUDED.parse_method,
			success = EXCLUDED.success,
			error = EXCLUDED.error,
			parsed_at = EXCLUDED.parsed_at;
	`
	_, err := r.db.Exec(ctx, query,
		rec.URL,
		string(rec.Type),
		rec.Title,
		rec.Author,
		rec.AuthorID,
		rec.Likes,
		rec.Collections,
		rec.Comments,
		rec.Shares,
		string(rec.ParseMethod),
		rec.Success,
		rec.Error,
		rec.ParsedAt,
	)
	return err
}

// FindByURL retrieves the stored record for a URL.
func (r *RecordRepoImpl) FindByURL(ctx context.Context, url string) (*entity.ExtractedRecord, error) {
	query := `
		SELECT url, page_type, title, author, author_id, likes, collections, comments, shares, parse_method, success, error, parsed_at
		FROM extracted_records
		WHERE url = $1;
	`
	var (
		rec         entity.ExtractedRecord
		pageType    string
		parseMethod string
	)
	err := r.db.QueryRow(ctx, query, url).Scan(
		&rec.URL,
		&pageType,
		&rec.Title,
		&rec.Author,
		&rec.AuthorID,
		&rec.Likes,
		&rec.Collections,
		&rec.Comments,
		&rec.Shares,
		&parseMethod,
		&rec.Success,
		&rec.Error,
		&rec.ParsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Type = entity.PageType(pageType)
	rec.ParseMethod = entity.ParseMethod(parseMethod)
	return &rec, nil
}

// ListStale returns URLs whose record was parsed before the cutoff, oldest first.
func (r *RecordRepoImpl) ListStale(ctx context.Context, before time.Time, limit int) ([]string, error) {
	query := `
		SELECT url FROM extracted_records
		WHERE parsed_at < $1
		ORDER BY parsed_at ASC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
