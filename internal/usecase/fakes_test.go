package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
)

type fakeFetcher struct {
	result *entity.FetchResult
	err    error
	got    []entity.FetchRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req entity.FetchRequest) (*entity.FetchResult, error) {
	f.got = append(f.got, req)
	return f.result, f.err
}

type memQueue struct {
	mu      sync.Mutex
	jobs    []*entity.ScrapeJob
	pushErr error
}

func (q *memQueue) Push(_ context.Context, job *entity.ScrapeJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pushErr != nil {
		return q.pushErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Pop(_ context.Context) (*entity.ScrapeJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *memQueue) Size(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type memVisited struct {
	marked map[string]time.Duration
}

func newMemVisited() *memVisited { return &memVisited{marked: map[string]time.Duration{}} }

func (v *memVisited) MarkVisited(_ context.Context, url string, expiry time.Duration) error {
	v.marked[url] = expiry
	return nil
}

func (v *memVisited) IsVisited(_ context.Context, url string) (bool, error) {
	_, ok := v.marked[url]
	return ok, nil
}

func (v *memVisited) RemoveVisited(_ context.Context, url string) error {
	delete(v.marked, url)
	return nil
}

type memRecords struct {
	mu    sync.Mutex
	byURL map[string]*entity.ExtractedRecord
	stale []string
	finds int
}

func newMemRecords() *memRecords { return &memRecords{byURL: map[string]*entity.ExtractedRecord{}} }

func (r *memRecords) Save(_ context.Context, rec *entity.ExtractedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byURL[rec.URL] = rec
	return nil
}

func (r *memRecords) FindByURL(_ context.Context, url string) (*entity.ExtractedRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	rec, ok := r.byURL[url]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memRecords) ListStale(_ context.Context, _ time.Time, limit int) ([]string, error) {
	if len(r.stale) > limit {
		return r.stale[:limit], nil
	}
	return r.stale, nil
}

type memCache struct {
	byURL map[string]*entity.ExtractedRecord
	ttl   time.Duration
}

func newMemCache() *memCache { return &memCache{byURL: map[string]*entity.ExtractedRecord{}} }

func (c *memCache) Get(_ context.Context, url string) (*entity.ExtractedRecord, error) {
	rec, ok := c.byURL[url]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return rec, nil
}

func (c *memCache) Set(_ context.Context, rec *entity.ExtractedRecord, ttl time.Duration) error {
	c.byURL[rec.URL] = rec
	c.ttl = ttl
	return nil
}

type memFailed struct {
	saved     map[string]*entity.FailedScrape
	retryable []*entity.FailedScrape
	deleted   []string
}

func newMemFailed() *memFailed { return &memFailed{saved: map[string]*entity.FailedScrape{}} }

func (f *memFailed) SaveOrUpdate(_ context.Context, failed *entity.FailedScrape) error {
	f.saved[failed.URL] = failed
	return nil
}

func (f *memFailed) FindRetryable(_ context.Context, _ int) ([]*entity.FailedScrape, error) {
	return f.retryable, nil
}

func (f *memFailed) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type stubScraper struct {
	rec *entity.ExtractedRecord
	err error
	got []ScrapeRequest
}

func (s *stubScraper) Scrape(_ context.Context, req ScrapeRequest) (*entity.ExtractedRecord, error) {
	s.got = append(s.got, req)
	return s.rec, s.err
}
