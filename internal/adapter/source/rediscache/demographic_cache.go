package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tweetpanel/panel-api/internal/adapter/metrics"
	"github.com/tweetpanel/panel-api/internal/domain"
)

const keyPrefix = "demog:"

// DemographicCache is a read-through cache in front of another
// domain.DemographicSource. Panel demographics change rarely, so cached
// entries are served until their TTL lapses. Redis being unavailable degrades
// to passing every request through; it never fails a query.
type DemographicCache struct {
	client  *redis.Client
	next    domain.DemographicSource
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.QueryMetrics
}

// NewDemographicCache wraps next with a Redis cache.
func NewDemographicCache(client *redis.Client, next domain.DemographicSource, ttl time.Duration, logger *slog.Logger, m *metrics.QueryMetrics) *DemographicCache {
	return &DemographicCache{
		client:  client,
		next:    next,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// FetchDemographics serves cached records where possible and fetches only the
// missing author ids from the underlying source, writing those back with the
// configured TTL.
func (c *DemographicCache) FetchDemographics(ctx context.Context, authorIDs []string) ([]domain.DemographicRecord, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(authorIDs))
	for i, id := range authorIDs {
		keys[i] = keyPrefix + id
	}

	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("demographic cache unavailable, falling through", "error", err)
		return c.next.FetchDemographics(ctx, authorIDs)
	}

	records := make([]domain.DemographicRecord, 0, len(authorIDs))
	var misses []string
	for i, raw := range cached {
		payload, ok := raw.(string)
		if !ok {
			misses = append(misses, authorIDs[i])
			continue
		}
		var rec domain.DemographicRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			c.logger.Warn("dropping corrupt cache entry", "key", keys[i], "error", err)
			misses = append(misses, authorIDs[i])
			continue
		}
		records = append(records, rec)
	}

	if c.metrics != nil {
		c.metrics.DemographicCacheHits.Add(float64(len(records)))
		c.metrics.DemographicCacheMisses.Add(float64(len(misses)))
	}

	if len(misses) == 0 {
		return records, nil
	}

	fetched, err := c.next.FetchDemographics(ctx, misses)
	if err != nil {
		return nil, err
	}
	records = append(records, fetched...)

	c.writeBack(ctx, fetched)
	return records, nil
}

func (c *DemographicCache) writeBack(ctx context.Context, records []domain.DemographicRecord) {
	if len(records) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		pipe.Set(ctx, keyPrefix+rec.AuthorID, payload, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("demographic cache write-back failed", "error", err)
	}
}
