package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/go-chi/chi/v5"
)

// Summarizer reads aggregated activity.
type Summarizer interface {
	CountByType(ctx context.Context, w Window) ([]TypeCount, error)
	Recent(ctx context.Context, eventType EventType, limit int) ([]Event, error)
}

// Handler serves the admin activity endpoints.
type Handler struct {
	summary Summarizer
	logger  *logging.Logger
}

// NewHandler creates an activity handler.
func NewHandler(summary Summarizer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{summary: summary, logger: logger}
}

// Routes mounts under /api/admin/analytics.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/activity", h.Activity)
	r.Get("/page-views", h.PageViews)
	return r
}

// Activity returns event counts per type.
// GET /api/admin/analytics/activity?startDate=&endDate=
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	var window Window
	for key, dst := range map[string]*time.Time{"startDate": &window.From, "endDate": &window.To} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+key)
			return
		}
		*dst = t
	}

	counts, err := h.summary.CountByType(r.Context(), window)
	if err != nil {
		h.logger.Error("failed to summarize activity", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userActivity": counts})
}

// PageViews returns the latest page_view events.
// GET /api/admin/analytics/page-views?limit=
func (h *Handler) PageViews(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.summary.Recent(r.Context(), EventPageView, limit)
	if errors.Is(err, ErrInvalidEvent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to load page views", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
