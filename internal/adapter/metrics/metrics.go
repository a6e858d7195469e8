package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// QueryMetrics holds all Prometheus metrics for the query service.
type QueryMetrics struct {
	QueriesTotal           *prometheus.CounterVec
	QueryDuration          prometheus.Histogram
	PostsFetchedTotal      prometheus.Counter
	DemographicCacheHits   prometheus.Counter
	DemographicCacheMisses prometheus.Counter
}

// NewQueryMetrics initializes and registers the Prometheus metrics.
func NewQueryMetrics() *QueryMetrics {
	return &QueryMetrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panel_api",
			Subsystem: "query",
			Name:      "queries_total",
			Help:      "Total number of keyword search queries by outcome.",
		}, []string{"status"}), // status: ok, invalid_query, sample_too_small, error
		QueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "panel_api",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "End-to-end keyword search latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		PostsFetchedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "panel_api",
			Subsystem: "source",
			Name:      "posts_fetched_total",
			Help:      "Total number of posts returned by the post source.",
		}),
		DemographicCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "panel_api",
			Subsystem: "source",
			Name:      "demographic_cache_hits_total",
			Help:      "Total number of demographic cache hits.",
		}),
		DemographicCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "panel_api",
			Subsystem: "source",
			Name:      "demographic_cache_misses_total",
			Help:      "Total number of demographic cache misses.",
		}),
	}
}
