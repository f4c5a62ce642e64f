package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/engagement-scraper/internal/delivery/http/handler"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/usecase"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

type okScraper struct{}

func (okScraper) Scrape(_ context.Context, req usecase.ScrapeRequest) (*entity.ExtractedRecord, error) {
	return &entity.ExtractedRecord{URL: req.URL, Success: true}, nil
}

type okURLManager struct{}

func (okURLManager) Submit(context.Context, string, string, bool) (string, error) {
	return "job-1", nil
}

func (okURLManager) GetRecord(_ context.Context, url string) (*entity.ExtractedRecord, error) {
	return &entity.ExtractedRecord{URL: url, Success: true}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	h := handler.NewHandler(okScraper{}, okURLManager{}, nil, zap.NewNop())
	return New(h, m, zap.NewNop()), m
}

func TestRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/parse", `{"url":"https://a.example/1"}`, http.StatusOK},
		{http.MethodPost, "/api/scrape", `{"url":"https://a.example/1"}`, http.StatusAccepted},
		{http.MethodGet, "/api/records?url=https://a.example/1", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/parse", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	r, m := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/records?url=https://a.example/"+string(rune('a'+i)), nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/records", "200")))
}
