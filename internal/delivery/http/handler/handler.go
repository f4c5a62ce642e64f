package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/user/engagement-scraper/internal/delivery/http/request"
	"github.com/user/engagement-scraper/internal/delivery/http/response"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/repository"
	"github.com/user/engagement-scraper/internal/usecase"
	"github.com/user/engagement-scraper/pkg/utils"
	"go.uber.org/zap"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	scraper    usecase.Scraper
	urlManager usecase.URLManager
	checks     map[string]HealthCheck
	logger     *zap.Logger
}

func NewHandler(scraper usecase.Scraper, urlManager usecase.URLManager, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		scraper:    scraper,
		urlManager: urlManager,
		checks:     checks,
		logger:     logger,
	}
}

// HandleParse scrapes a URL synchronously. A record is always returned:
// 200 when engagement data was extracted, 404 when it was not and 500 when
// the page could not be fetched.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req request.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.scraper.Scrape(r.Context(), usecase.ScrapeRequest{
		URL:        utils.CanonicalURL(req.URL),
		Credential: req.Credential,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidURL) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("parse failed", zap.String("url", req.URL), zap.Error(err))
		if rec != nil && errors.Is(err, entity.ErrFetchFailed) {
			h.writeJSON(w, http.StatusInternalServerError, rec)
			return
		}
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !rec.Success {
		h.writeJSON(w, http.StatusNotFound, rec)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleSubmitScrape(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.urlManager.Submit(r.Context(), utils.CanonicalURL(req.URL), req.Credential, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidURL):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, usecase.ErrURLRecentlyQueued):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to submit URL", zap.String("url", req.URL), zap.Error(err))
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitScrapeResponse{
		Status:  "success",
		Message: "URL submitted for scraping",
		JobID:   jobID,
	})
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	rec, err := h.urlManager.GetRecord(r.Context(), utils.CanonicalURL(rawURL))
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			h.writeJSONError(w, "No record found for the given URL", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get record", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("service", name), zap.Error(err))
			status[name] = "unhealthy"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "healthy"
	}
	h.writeJSON(w, code, status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
