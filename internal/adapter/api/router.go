package api

import (
	"log/slog"
	"net/http"

	"github.com/tweetpanel/panel-api/internal/adapter/api/handler"
	"github.com/tweetpanel/panel-api/internal/adapter/metrics"
	"github.com/tweetpanel/panel-api/internal/domain"
	"github.com/tweetpanel/panel-api/internal/pkg/config"
	"github.com/tweetpanel/panel-api/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the query service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	catalog *domain.Catalog,
	searchUseCase *usecase.KeywordSearchUseCase,
	m *metrics.QueryMetrics,
) http.Handler {
	mux := http.NewServeMux()

	searchHandler := handler.NewSearchHandler(searchUseCase, catalog, logger, m, cfg.MaxCrossSections)

	// The original interface accepts both verbs; the query rides in the JSON
	// body either way.
	mux.Handle("POST /keyword_search", searchHandler)
	mux.Handle("GET /keyword_search", searchHandler)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
