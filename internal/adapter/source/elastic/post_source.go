package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/tweetpanel/panel-api/internal/adapter/metrics"
	"github.com/tweetpanel/panel-api/internal/domain"
)

// maxHits caps one search at the index's default result window.
// TODO: page with search_after once panels grow past the result window.
const maxHits = 10000

const dateLayout = "2006-01-02"

// PostSource implements domain.PostSource against an Elasticsearch index of
// posts. Documents carry a created_at timestamp and a user.id field.
type PostSource struct {
	client  *elasticsearch.Client
	index   string
	logger  *slog.Logger
	metrics *metrics.QueryMetrics
}

// NewPostSource connects to the cluster at the given addresses.
func NewPostSource(addresses []string, index string, logger *slog.Logger, m *metrics.QueryMetrics) (*PostSource, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &PostSource{client: client, index: index, logger: logger, metrics: m}, nil
}

type searchHit struct {
	Source struct {
		CreatedAt time.Time `json:"created_at"`
		User      struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// FetchPosts runs a match query on the post text, optionally bounded by an
// inclusive created_at range.
func (s *PostSource) FetchPosts(ctx context.Context, keyword string, dateRange domain.DateRange) ([]domain.Post, error) {
	body, err := json.Marshal(buildQuery(keyword, dateRange))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(maxHits),
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %q: elasticsearch returned %s", keyword, res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	posts := make([]domain.Post, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		if hit.Source.User.ID == "" {
			continue
		}
		posts = append(posts, domain.Post{
			AuthorID:  hit.Source.User.ID,
			CreatedAt: hit.Source.CreatedAt,
		})
	}

	if s.metrics != nil {
		s.metrics.PostsFetchedTotal.Add(float64(len(posts)))
	}
	s.logger.Debug("elasticsearch search complete", "keyword", keyword, "hits", len(posts))
	return posts, nil
}

func buildQuery(keyword string, dateRange domain.DateRange) map[string]any {
	must := []map[string]any{
		{"match": map[string]any{"full_text": keyword}},
	}

	rangeBounds := map[string]any{}
	if dateRange.After != nil {
		rangeBounds["gte"] = dateRange.After.Format(dateLayout)
	}
	if dateRange.Before != nil {
		rangeBounds["lte"] = dateRange.Before.Format(dateLayout)
	}
	if len(rangeBounds) > 0 {
		must = append(must, map[string]any{
			"range": map[string]any{"created_at": rangeBounds},
		})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
	}
}
