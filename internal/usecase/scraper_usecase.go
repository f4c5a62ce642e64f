package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/extractor"
	"github.com/user/engagement-scraper/internal/repository"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

var ErrInvalidURL = errors.New("invalid url: must be an absolute http(s) url")

// ScrapeRequest is what callers supply to scrape one page.
type ScrapeRequest struct {
	URL         string
	Credential  string
	Headers     entity.HeaderOverrides
	Timeout     time.Duration
	MaxAttempts int
}

// Scraper runs fetch, extraction and aggregation for one URL.
type Scraper interface {
	// Scrape always returns a well-formed record for a valid URL. When the
	// fetch itself failed the record has parseMethod "error" and the fetch
	// error is returned alongside it.
	Scrape(ctx context.Context, req ScrapeRequest) (*entity.ExtractedRecord, error)
}

type scraperUseCase struct {
	fetcher    repository.Fetcher
	pipeline   *extractor.Pipeline
	aggregator *extractor.Aggregator
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewScraperUseCase creates a new instance of the scraper use case.
func NewScraperUseCase(
	fetcher repository.Fetcher,
	pipeline *extractor.Pipeline,
	aggregator *extractor.Aggregator,
	m *metrics.Metrics,
	logger *zap.Logger,
) Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scraperUseCase{
		fetcher:    fetcher,
		pipeline:   pipeline,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger,
	}
}

func (uc *scraperUseCase) Scrape(ctx context.Context, req ScrapeRequest) (*entity.ExtractedRecord, error) {
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}
	pageType := extractor.DetectPageType(req.URL)

	res, err := uc.fetcher.Fetch(ctx, entity.FetchRequest{
		URL:         req.URL,
		Credential:  req.Credential,
		Headers:     req.Headers,
		Timeout:     req.Timeout,
		MaxAttempts: req.MaxAttempts,
	})
	if err != nil {
		rec := uc.aggregator.Failure(req.URL, pageType, err)
		uc.metrics.IncScrape(string(rec.ParseMethod), false)
		return rec, fmt.Errorf("scrape %s: %w", req.URL, err)
	}

	result := uc.pipeline.Extract(extractor.NewContext(res.Body, pageType))
	rec := uc.aggregator.Build(req.URL, pageType, result)
	uc.metrics.IncScrape(string(rec.ParseMethod), rec.Success)

	uc.logger.Info("scraped page",
		zap.String("url", req.URL),
		zap.String("type", string(pageType)),
		zap.Int("status_code", res.StatusCode),
		zap.Int("attempts", res.Attempts),
		zap.String("parse_method", string(rec.ParseMethod)),
		zap.Bool("success", rec.Success),
		zap.Duration("elapsed", res.Elapsed))
	return rec, nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
