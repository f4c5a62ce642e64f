package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrURLRecentlyQueued = errors.New("URL has been queued recently and force is false")
)

// URLManager defines the interface for queueing URLs and reading their records.
type URLManager interface {
	Submit(ctx context.Context, url, credential string, force bool) (string, error)
	GetRecord(ctx context.Context, url string) (*entity.ExtractedRecord, error)
}

type urlManagerUseCase struct {
	visitedRepo repository.VisitedRepository
	queueRepo   repository.QueueRepository
	recordRepo  repository.RecordRepository
	recordCache repository.RecordCache
	dedupWindow time.Duration
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewURLManager creates a new URLManager use case.
func NewURLManager(
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	recordRepo repository.RecordRepository,
	recordCache repository.RecordCache,
	dedupWindow time.Duration,
	cacheTTL time.Duration,
	logger *zap.Logger,
) URLManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &urlManagerUseCase{
		visitedRepo: visitedRepo,
		queueRepo:   queueRepo,
		recordRepo:  recordRepo,
		recordCache: recordCache,
		dedupWindow: dedupWindow,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func (uc *urlManagerUseCase) Submit(ctx context.Context, url, credential string, force bool) (string, error) {
	if err := validateURL(url); err != nil {
		return "", err
	}

	if force {
		if err := uc.visitedRepo.RemoveVisited(ctx, url); err != nil {
			// Not critical: the job is queued regardless.
			uc.logger.Warn("failed to remove queued marker for forced scrape", zap.String("url", url), zap.Error(err))
		}
	} else {
		queued, err := uc.visitedRepo.IsVisited(ctx, url)
		if err != nil {
			return "", err
		}
		if queued {
			return "", ErrURLRecentlyQueued
		}
	}

	job := &entity.ScrapeJob{
		ID:         newJobID(),
		URL:        url,
		Credential: credential,
		QueuedAt:   time.Now().UTC(),
	}
	if err := uc.queueRepo.Push(ctx, job); err != nil {
		return "", err
	}

	if err := uc.visitedRepo.MarkVisited(ctx, url, uc.dedupWindow); err != nil {
		// The job is queued but may be queued again before it is processed.
		uc.logger.Error("failed to mark URL as queued", zap.String("url", url), zap.Error(err))
	}

	return job.ID, nil
}

func (uc *urlManagerUseCase) GetRecord(ctx context.Context, url string) (*entity.ExtractedRecord, error) {
	if uc.recordCache != nil {
		rec, err := uc.recordCache.Get(ctx, url)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, repository.ErrRecordNotFound) {
			uc.logger.Warn("record cache lookup failed", zap.String("url", url), zap.Error(err))
		}
	}

	rec, err := uc.recordRepo.FindByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	if uc.recordCache != nil {
		if err := uc.recordCache.Set(ctx, rec, uc.cacheTTL); err != nil {
			uc.logger.Warn("failed to cache record", zap.String("url", url), zap.Error(err))
		}
	}
	return rec, nil
}

func newJobID() string {
	return uuid.NewString()
}
