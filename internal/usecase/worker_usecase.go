package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	initialRetryBackoff = 5 * time.Minute
	idlePollInterval    = time.Second
)

// Worker drains the scrape queue and keeps stored records fresh.
type Worker interface {
	// ProcessNext handles one queued job. It reports false when the queue was empty.
	ProcessNext(ctx context.Context) (bool, error)
	// Run starts n workers that poll the queue until ctx is done.
	Run(ctx context.Context, n int)
	// Refresh re-queues stale records and failures that are due for a retry.
	Refresh(ctx context.Context) (int, error)
}

// WorkerConfig tunes throttling and refresh behaviour.
type WorkerConfig struct {
	// RequestsPerSecond caps outbound scrapes across all goroutines. Zero
	// disables throttling.
	RequestsPerSecond float64
	StaleAfter        time.Duration
	RefreshBatch      int
	CacheTTL          time.Duration
	// DedupWindow is how long a URL re-queued by Refresh stays marked as
	// queued. Zero uses one hour.
	DedupWindow       time.Duration
}

type workerUseCase struct {
	scraper     Scraper
	visitedRepo repository.VisitedRepository
	queueRepo   repository.QueueRepository
	recordRepo  repository.RecordRepository
	failedRepo  repository.FailedScrapeRepository
	recordCache repository.RecordCache
	limiter     *rate.Limiter
	cfg         WorkerConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewWorker creates a queue worker around a Scraper.
func NewWorker(
	scraper Scraper,
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	recordRepo repository.RecordRepository,
	failedRepo repository.FailedScrapeRepository,
	recordCache repository.RecordCache,
	cfg WorkerConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	if cfg.RefreshBatch <= 0 {
		cfg.RefreshBatch = 100
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = time.Hour
	}
	return &workerUseCase{
		scraper:     scraper,
		visitedRepo: visitedRepo,
		queueRepo:   queueRepo,
		recordRepo:  recordRepo,
		failedRepo:  failedRepo,
		recordCache: recordCache,
		limiter:     limiter,
		cfg:         cfg,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *workerUseCase) ProcessNext(ctx context.Context) (bool, error) {
	job, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop job from queue: %w", err)
	}

	if err := uc.limiter.Wait(ctx); err != nil {
		// Put the job back so it is not lost on shutdown.
		if pushErr := uc.queueRepo.Push(context.WithoutCancel(ctx), job); pushErr != nil {
			uc.logger.Error("failed to requeue job", zap.String("url", job.URL), zap.Error(pushErr))
		}
		return true, err
	}

	uc.logger.Info("processing job", zap.String("job_id", job.ID), zap.String("url", job.URL))
	rec, scrapeErr := uc.scraper.Scrape(ctx, ScrapeRequest{URL: job.URL, Credential: job.Credential})
	if scrapeErr != nil {
		return true, uc.handleFailure(ctx, job, scrapeErr)
	}
	return true, uc.handleSuccess(ctx, rec)
}

func (uc *workerUseCase) handleSuccess(ctx context.Context, rec *entity.ExtractedRecord) error {
	if !rec.Success {
		// Keep whatever was stored before rather than overwrite it with an empty record.
		uc.logger.Warn("no engagement data extracted", zap.String("url", rec.URL), zap.String("parse_method", string(rec.ParseMethod)))
		return nil
	}

	if err := uc.recordRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record for %s: %w", rec.URL, err)
	}
	if uc.recordCache != nil {
		if err := uc.recordCache.Set(ctx, rec, uc.cfg.CacheTTL); err != nil {
			uc.logger.Warn("failed to cache record", zap.String("url", rec.URL), zap.Error(err))
		}
	}
	if err := uc.failedRepo.Delete(ctx, rec.URL); err != nil {
		// This is not a critical error, just log it.
		uc.logger.Warn("failed to clear failed scrape after success", zap.String("url", rec.URL), zap.Error(err))
	}
	return nil
}

func (uc *workerUseCase) handleFailure(ctx context.Context, job *entity.ScrapeJob, scrapeErr error) error {
	url := job.URL
	uc.logger.Error("scrape failed, scheduling retry", zap.String("url", url), zap.Error(scrapeErr))
	if errors.Is(scrapeErr, ErrInvalidURL) {
		return nil
	}

	now := uc.now()
	failed := &entity.FailedScrape{
		URL:                  url,
		Credential:           job.Credential,
		FailureReason:        scrapeErr.Error(),
		LastAttemptTimestamp: now,
		NextRetryAt:          now.Add(initialRetryBackoff),
	}
	if err := uc.failedRepo.SaveOrUpdate(ctx, failed); err != nil {
		return fmt.Errorf("failed to save failed scrape for %s: %w", url, err)
	}
	return nil
}

func (uc *workerUseCase) Run(ctx context.Context, n int) {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			uc.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (uc *workerUseCase) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}
		processed, err := uc.ProcessNext(ctx)
		if err != nil && ctx.Err() == nil {
			uc.logger.Error("worker iteration failed", zap.Int("worker", id), zap.Error(err))
		}
		if size, err := uc.queueRepo.Size(ctx); err == nil {
			uc.metrics.SetQueueDepth(size)
		}
		if !processed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idlePollInterval):
			}
		}
	}
}

func (uc *workerUseCase) Refresh(ctx context.Context) (int, error) {
	queued, skipped := 0, 0

	stale, err := uc.recordRepo.ListStale(ctx, uc.now().Add(-uc.cfg.StaleAfter), uc.cfg.RefreshBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale records: %w", err)
	}
	for _, u := range stale {
		ok, err := uc.push(ctx, u, "")
		if err != nil {
			return queued, err
		}
		if ok {
			queued++
		} else {
			skipped++
		}
	}

	retryable, err := uc.failedRepo.FindRetryable(ctx, uc.cfg.RefreshBatch)
	if err != nil {
		return queued, fmt.Errorf("failed to list retryable scrapes: %w", err)
	}
	for _, f := range retryable {
		ok, err := uc.push(ctx, f.URL, f.Credential)
		if err != nil {
			return queued, err
		}
		if ok {
			queued++
		} else {
			skipped++
		}
	}

	uc.logger.Info("refresh queued jobs",
		zap.Int("stale", len(stale)),
		zap.Int("retryable", len(retryable)),
		zap.Int("queued", queued),
		zap.Int("already_queued", skipped))
	return queued, nil
}

// push queues url unless it is still marked as queued. It reports whether a
// job was pushed.
func (uc *workerUseCase) push(ctx context.Context, url, credential string) (bool, error) {
	queued, err := uc.visitedRepo.IsVisited(ctx, url)
	if err != nil {
		return false, fmt.Errorf("failed to check queued marker for %s: %w", url, err)
	}
	if queued {
		return false, nil
	}

	job := &entity.ScrapeJob{ID: newJobID(), URL: url, Credential: credential, QueuedAt: uc.now().UTC()}
	if err := uc.queueRepo.Push(ctx, job); err != nil {
		return false, fmt.Errorf("failed to queue %s: %w", url, err)
	}
	if err := uc.visitedRepo.MarkVisited(ctx, url, uc.cfg.DedupWindow); err != nil {
		uc.logger.Warn("failed to mark URL as queued", zap.String("url", url), zap.Error(err))
	}
	return true, nil
}
