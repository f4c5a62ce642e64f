package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/user/engagement-scraper/internal/adapter/httpfetcher"
	"github.com/user/engagement-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/engagement-scraper/internal/adapter/redis"
	"github.com/user/engagement-scraper/internal/extractor"
	"github.com/user/engagement-scraper/internal/usecase"
	"github.com/user/engagement-scraper/pkg/config"
	"github.com/user/engagement-scraper/pkg/logger"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()

	m := metrics.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		log.Fatal("unable to apply schema", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("unable to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	fetcher, err := httpfetcher.New(httpfetcher.Config{
		Timeout:      cfg.FetchTimeout,
		MaxAttempts:  cfg.FetchMaxAttempts,
		BaseDelay:    cfg.FetchBackoffBase,
		MaxBodyBytes: cfg.FetchMaxBodyBytes,
		UserAgent:    cfg.UserAgent,
		Proxies:      cfg.Proxies(),
	}, m, log.Named("fetcher"))
	if err != nil {
		log.Fatal("invalid fetcher configuration", zap.Error(err))
	}

	scraper := usecase.NewScraperUseCase(fetcher, extractor.NewPipeline(log.Named("pipeline")), extractor.NewAggregator(), m, log)
	worker := usecase.NewWorker(
		scraper,
		redis_adapter.NewVisitedRepo(rdb),
		redis_adapter.NewQueueRepo(rdb),
		postgres.NewRecordRepo(dbpool),
		postgres.NewFailedScrapeRepo(dbpool),
		redis_adapter.NewRecordCache(rdb),
		usecase.WorkerConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			StaleAfter:        cfg.StaleAfter,
			CacheTTL:          cfg.RecordCacheTTL,
			DedupWindow:       cfg.DedupWindow,
		},
		m,
		log.Named("worker"),
	)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshSchedule, func() {
		if n, err := worker.Refresh(ctx); err != nil {
			log.Error("refresh failed", zap.Int("queued", n), zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid refresh schedule", zap.String("schedule", cfg.RefreshSchedule), zap.Error(err))
	}
	scheduler.Start()

	// Metrics only; the worker has no API.
	metricsServer := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: promhttp.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	log.Info("worker started", zap.Int("workers", cfg.Workers), zap.String("metrics_port", cfg.MetricsPort), zap.Float64("requests_per_second", cfg.RequestsPerSecond))
	worker.Run(ctx, cfg.Workers)

	log.Info("shutting down worker...")
	<-scheduler.Stop().Done()
	_ = metricsServer.Shutdown(context.Background())
	log.Info("worker exiting")
}
