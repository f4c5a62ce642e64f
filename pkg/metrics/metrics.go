package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	FetchAttemptsTotal  *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	ScrapesTotal        *prometheus.CounterVec
	JobsInQueue         prometheus.Gauge
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer to
// expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		FetchAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_attempts_total",
				Help: "Page fetch attempts by outcome.",
			},
			[]string{"outcome"}, // ok, client_error, server_error, timeout, transport
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Duration of logical page fetches including retries.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"domain"},
		),
		ScrapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_scrapes_total",
				Help: "Completed scrapes by parse method and success.",
			},
			[]string{"parse_method", "success"},
		),
		JobsInQueue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_jobs_in_queue",
				Help: "Current number of jobs in the scrape queue.",
			},
		),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (m *Metrics) IncFetchAttempt(outcome string) {
	if m == nil {
		return
	}
	m.FetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetch(domain string, seconds float64) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(domain).Observe(seconds)
}

func (m *Metrics) IncScrape(parseMethod string, success bool) {
	if m == nil {
		return
	}
	s := "false"
	if success {
		s = "true"
	}
	m.ScrapesTotal.WithLabelValues(parseMethod, s).Inc()
}

func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.JobsInQueue.Set(float64(n))
}
