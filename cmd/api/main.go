package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/user/engagement-scraper/internal/adapter/httpfetcher"
	"github.com/user/engagement-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/engagement-scraper/internal/adapter/redis"
	"github.com/user/engagement-scraper/internal/delivery/http/handler"
	"github.com/user/engagement-scraper/internal/delivery/http/router"
	"github.com/user/engagement-scraper/internal/extractor"
	"github.com/user/engagement-scraper/internal/usecase"
	"github.com/user/engagement-scraper/pkg/config"
	"github.com/user/engagement-scraper/pkg/logger"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Database Connections ---
	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		log.Fatal("unable to apply schema", zap.Error(err))
	}
	log.Info("PostgreSQL connection pool established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("unable to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("Redis connection established")

	// --- Repositories ---
	visitedRepo := redis_adapter.NewVisitedRepo(rdb)
	queueRepo := redis_adapter.NewQueueRepo(rdb)
	recordCache := redis_adapter.NewRecordCache(rdb)
	recordRepo := postgres.NewRecordRepo(dbpool)

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

	// --- Use Cases ---
	scraper := usecase.NewScraperUseCase(fetcher, extractor.NewPipeline(log.Named("pipeline")), extractor.NewAggregator(), m, log)
	urlManager := usecase.NewURLManager(visitedRepo, queueRepo, recordRepo, recordCache, cfg.DedupWindow, cfg.RecordCacheTTL, log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(scraper, urlManager, map[string]handler.HealthCheck{
		"postgres": dbpool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, m, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 100 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
