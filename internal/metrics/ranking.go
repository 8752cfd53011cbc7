package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval and rerank Prometheus metrics.
var (
	VectorSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vector_search_duration_seconds",
			Help:      "Vector index query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend"},
	)

	VectorSearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_search_errors_total",
			Help:      "Failed vector index queries",
		},
		[]string{"backend"},
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_requests_total",
			Help:      "Rerank calls by provider and outcome",
		},
		[]string{"provider", "outcome"}, // success / fallback / cache_hit
	)

	RerankDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rerank_duration_seconds",
			Help:      "Rerank provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider"},
	)

	RerankCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_cache_total",
			Help:      "Rerank cache hits and misses",
		},
		[]string{"result"},
	)
)

var rankOnce sync.Once

// RegisterRankingMetrics registers the retrieval and rerank collectors with the default registry.
func RegisterRankingMetrics() {
	rankOnce.Do(func() {
		prometheus.MustRegister(
			VectorSearchDuration,
			VectorSearchErrorsTotal,
			RerankRequestsTotal,
			RerankDuration,
			RerankCacheTotal,
		)
	})
}
