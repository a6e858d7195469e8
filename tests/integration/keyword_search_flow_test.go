package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tweetpanel/panel-api/internal/adapter/api"
	"github.com/tweetpanel/panel-api/internal/adapter/api/middleware"
	"github.com/tweetpanel/panel-api/internal/adapter/source/attached"
	"github.com/tweetpanel/panel-api/internal/domain"
	"github.com/tweetpanel/panel-api/internal/pkg/config"
	"github.com/tweetpanel/panel-api/internal/usecase"
)

func intp(n int) *int { return &n }

// newTestServer wires the full request pipeline — router, middleware,
// validator, sources, aggregation, censor — over attached data.
func newTestServer(t *testing.T, posts []domain.Post, records []domain.DemographicRecord, threshold int) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := domain.NewCatalog()
	cfg := &config.Config{MaxCrossSections: 2, MinDisplayedCount: threshold}

	uc := usecase.NewKeywordSearchUseCase(
		attached.NewPostSource(posts),
		attached.NewDemographicSource(records),
		usecase.NewAggregator(catalog),
		logger,
		threshold,
		false,
	)
	router := api.NewRouter(cfg, logger, catalog, uc, nil)
	server := httptest.NewServer(middleware.Logging(logger)(router))
	t.Cleanup(server.Close)
	return server
}

func search(t *testing.T, server *httptest.Server, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(server.URL+"/keyword_search", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return decoded
}

func TestKeywordSearchFlow(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2023, 2, d, hour, 0, 0, 0, time.UTC)
	}

	posts := []domain.Post{
		{AuthorID: "0", CreatedAt: day(17, 9)},
		{AuthorID: "1", CreatedAt: day(17, 10)},
		{AuthorID: "2", CreatedAt: day(17, 11)},
		{AuthorID: "2", CreatedAt: day(17, 12)},
		{AuthorID: "3", CreatedAt: day(18, 9)},
	}
	records := []domain.DemographicRecord{
		{AuthorID: "0", State: "CA", Age: intp(25), Gender: "Female", Race: "Caucasian"},
		{AuthorID: "1", State: "CA", Age: intp(44), Gender: "Male", Race: "Hispanic"},
		{AuthorID: "2", State: "TX", Age: intp(61), Gender: "Female", Race: "Caucasian"},
		{AuthorID: "3", State: "NY", Age: nil, Gender: "Unknown", Race: "Asian"},
	}

	t.Run("Full Pipeline", func(t *testing.T) {
		server := newTestServer(t, posts, records, 1)

		decoded := search(t, server, `{"keyword_query": "election", "aggregate_time_period": "day", "cross_sections": ["race", "gender"]}`)
		periods, ok := decoded["response_data"].([]any)
		if !ok {
			t.Fatalf("expected period list, got %v", decoded["response_data"])
		}
		if len(periods) != 2 {
			t.Fatalf("expected 2 periods, got %d", len(periods))
		}

		first := periods[0].(map[string]any)
		if first["ts"] != "2023-02-17T00:00:00Z" {
			t.Errorf("ts = %v", first["ts"])
		}
		// Author 2 posted twice: 4 posts, 3 distinct authors.
		if first["n_tweets"] != float64(4) || first["n_tweeters"] != float64(3) {
			t.Errorf("n_tweets=%v n_tweeters=%v, want 4/3", first["n_tweets"], first["n_tweeters"])
		}

		states := first["tsmart_state"].(map[string]any)
		if states["CA"] != float64(2) || states["TX"] != float64(1) {
			t.Errorf("state counts = %v", states)
		}

		// Authors 0 and 2 share Caucasian/Female, author 1 is Hispanic/Male.
		groups, ok := first["groups"].([]any)
		if !ok || len(groups) != 2 {
			t.Fatalf("groups = %v", first["groups"])
		}
	})

	t.Run("Date Range Narrows The Window", func(t *testing.T) {
		server := newTestServer(t, posts, records, 1)

		decoded := search(t, server, `{"keyword_query": "election", "aggregate_time_period": "day", "after": "2023-02-18"}`)
		periods := decoded["response_data"].([]any)
		if len(periods) != 1 {
			t.Fatalf("expected 1 period, got %d", len(periods))
		}
	})

	t.Run("Privacy Threshold Suppresses Small Samples", func(t *testing.T) {
		server := newTestServer(t, posts, records, 10)

		decoded := search(t, server, `{"keyword_query": "election", "aggregate_time_period": "day"}`)
		if decoded["response_data"] != "sample too small to be statistically useful" {
			t.Errorf("expected the small sample message, got %v", decoded["response_data"])
		}
	})

	t.Run("Invalid Query Is Reported In Band", func(t *testing.T) {
		server := newTestServer(t, posts, records, 1)

		decoded := search(t, server, `{"keyword_query": "election", "aggregate_time_period": "fortnight"}`)
		if decoded["response_data"] != "invalid query" {
			t.Errorf("expected the invalid query message, got %v", decoded["response_data"])
		}
	})

	t.Run("No Matching Posts", func(t *testing.T) {
		server := newTestServer(t, nil, records, 1)

		decoded := search(t, server, `{"keyword_query": "election", "aggregate_time_period": "day"}`)
		periods, ok := decoded["response_data"].([]any)
		if !ok || len(periods) != 0 {
			t.Errorf("expected empty period list, got %v", decoded["response_data"])
		}
	})
}
