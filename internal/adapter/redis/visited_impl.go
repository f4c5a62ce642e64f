package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/engagement-scraper/pkg/utils"
)

const queuedURLPrefix = "queued:"

// VisitedRepoImpl provides a concrete implementation for the VisitedRepository interface using Redis.
type VisitedRepoImpl struct {
	client *redis.Client
}

// NewVisitedRepo creates a new instance of VisitedRepoImpl.
func NewVisitedRepo(client *redis.Client) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client}
}

func (r *VisitedRepoImpl) generateKey(url string) string {
	return queuedURLPrefix + utils.HashURL(url)
}

// MarkVisited marks a URL as queued with an expiry.
func (r *VisitedRepoImpl) MarkVisited(ctx context.Context, url string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(url), "1", expiry).Err()
}

// IsVisited checks if a URL has been queued within the dedup window.
func (r *VisitedRepoImpl) IsVisited(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// RemoveVisited clears the queued marker, used for forced scrapes.
func (r *VisitedRepoImpl) RemoveVisited(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}
