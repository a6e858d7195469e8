package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tweetpanel/panel-api/internal/adapter/metrics"
	"github.com/tweetpanel/panel-api/internal/domain"
	"github.com/tweetpanel/panel-api/internal/usecase"
)

// Messages returned in place of response data. These strings are part of the
// public interface; dashboard clients match on them.
const (
	msgInvalidQuery   = "invalid query"
	msgSampleTooSmall = "sample too small to be statistically useful"
)

// searchResponse is the envelope for every keyword search response. Data is
// either the period list or one of the message strings; both ship with
// HTTP 200 for compatibility with existing clients.
type searchResponse struct {
	Query domain.RawQuery `json:"query"`
	Data  any             `json:"response_data"`
}

// SearchHandler handles keyword search requests.
type SearchHandler struct {
	useCase          *usecase.KeywordSearchUseCase
	catalog          *domain.Catalog
	logger           *slog.Logger
	metrics          *metrics.QueryMetrics
	maxCrossSections int
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(uc *usecase.KeywordSearchUseCase, catalog *domain.Catalog, logger *slog.Logger, m *metrics.QueryMetrics, maxCrossSections int) *SearchHandler {
	return &SearchHandler{
		useCase:          uc,
		catalog:          catalog,
		logger:           logger,
		metrics:          m,
		maxCrossSections: maxCrossSections,
	}
}

// ServeHTTP processes a keyword search request.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var raw domain.RawQuery
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.observe("invalid_query", start)
		writeJSON(w, http.StatusOK, searchResponse{Query: raw, Data: msgInvalidQuery})
		return
	}

	query, err := domain.ParseQuery(raw, h.catalog, h.maxCrossSections)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidQuery) {
			h.logger.Error("unexpected validation failure", "error", err)
		}
		h.logger.Info("rejected query", "reason", err.Error())
		h.observe("invalid_query", start)
		writeJSON(w, http.StatusOK, searchResponse{Query: raw, Data: msgInvalidQuery})
		return
	}

	result, err := h.useCase.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("keyword search failed", "keyword", query.Keyword, "error", err)
		h.observe("error", start)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if usecase.SampleTooSmall(result, h.useCase.Threshold()) {
		h.observe("sample_too_small", start)
		writeJSON(w, http.StatusOK, searchResponse{Query: raw, Data: msgSampleTooSmall})
		return
	}

	h.observe("ok", start)
	writeJSON(w, http.StatusOK, searchResponse{Query: raw, Data: result.Periods})
}

func (h *SearchHandler) observe(status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.QueriesTotal.WithLabelValues(status).Inc()
	h.metrics.QueryDuration.Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
