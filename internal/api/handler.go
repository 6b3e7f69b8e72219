// Package api serves stored summaries and the daily index over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/database"
	"github.com/smukkama/weather-summary/internal/index"
)

// SummaryReader is the read side of the summary store.
type SummaryReader interface {
	GetDailySummary(ctx context.Context, date string) (*database.DailyRow, error)
	ListDailySummaries(ctx context.Context) ([]*database.DailyRow, error)
	GetOverallSummary(ctx context.Context, name string) (*database.OverallRow, error)
}

// IndexReader is the read side of the daily index.
type IndexReader interface {
	Get(ctx context.Context, date string) (*aggregation.IndexEntry, error)
	All(ctx context.Context) (aggregation.DailyIndex, error)
}

type Handler struct {
	summaries SummaryReader
	index     IndexReader
	logger    *slog.Logger
}

// NewHandler creates the API handlers. idx may be nil when no index store
// is configured.
func NewHandler(summaries SummaryReader, idx IndexReader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{summaries: summaries, index: idx, logger: logger}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) listDaily(w http.ResponseWriter, r *http.Request) {
	rows, err := h.summaries.ListDailySummaries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.Document)
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) getDaily(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	row, err := h.summaries.GetDailySummary(r.Context(), date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row.Document)
}

func (h *Handler) getOverall(w http.ResponseWriter, r *http.Request) {
	row, err := h.summaries.GetOverallSummary(r.Context(), database.OverallName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row.Document)
}

func (h *Handler) getIndex(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, http.StatusServiceUnavailable, "index store not configured")
		return
	}

	idx, err := h.index.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

func (h *Handler) getIndexEntry(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		writeError(w, http.StatusServiceUnavailable, "index store not configured")
		return
	}

	entry, err := h.index.Get(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, index.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
