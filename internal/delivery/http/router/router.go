package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/engagement-scraper/internal/delivery/http/handler"
	"github.com/user/engagement-scraper/internal/delivery/http/middleware"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(90 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", h.HandleParse)
		r.Post("/scrape", h.HandleSubmitScrape)
		r.Get("/records", h.HandleGetRecord)
	})

	return r
}
