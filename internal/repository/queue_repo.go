package repository

import (
	"context"
	"errors"

	"github.com/user/engagement-scraper/internal/entity"
)

// ErrQueueEmpty is returned by Pop when there is nothing to process.
var ErrQueueEmpty = errors.New("queue is empty")

// QueueRepository defines the interface for a FIFO queue of scrape jobs.
type QueueRepository interface {
	// Push adds a job to the end of the queue.
	Push(ctx context.Context, job *entity.ScrapeJob) error
	// Pop removes and returns the job at the front of the queue.
	Pop(ctx context.Context) (*entity.ScrapeJob, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
