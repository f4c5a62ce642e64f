package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
	"github.com/user/engagement-scraper/pkg/utils"
)

const recordKeyPrefix = "record:"

// RecordCacheImpl caches extracted records as JSON strings.
type RecordCacheImpl struct {
	client *redis.Client
}

// NewRecordCache creates a new instance of RecordCacheImpl.
func NewRecordCache(client *redis.Client) *RecordCacheImpl {
	return &RecordCacheImpl{client: client}
}

// Get returns repository.ErrRecordNotFound on a cache miss.
func (c *RecordCacheImpl) Get(ctx context.Context, url string) (*entity.ExtractedRecord, error) {
	payload, err := c.client.Get(ctx, recordKeyPrefix+utils.HashURL(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec entity.ExtractedRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode cached record: %w", err)
	}
	return &rec, nil
}

func (c *RecordCacheImpl) Set(ctx context.Context, rec *entity.ExtractedRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return c.client.Set(ctx, recordKeyPrefix+utils.HashURL(rec.URL), payload, ttl).Err()
}
