package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval engine Prometheus metrics.
var (
	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "rerank_requests_total",
			Help:      "Total number of rerank requests",
		},
		[]string{"strategy", "status"},
	)

	RerankDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "rerank_duration_seconds",
			Help:      "Rerank call duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	RerankFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "rerank_fallbacks_total",
			Help:      "Per-document fallbacks to keyword scoring",
		},
		[]string{"from", "reason"},
	)

	RerankDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "rerank_dropped_total",
			Help:      "Documents dropped from a rerank batch",
		},
		[]string{"reason"}, // "timeout" / "saturated"
	)

	ScoreCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "score_cache_total",
			Help:      "Score cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RetrievalPassesTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "retrieval_passes",
			Help:      "Retrieval passes executed per query",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragdex",
			Name:      "retrieval_duration_seconds",
			Help:      "Full retrieval call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	ScoringRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdex",
			Name:      "scoring_requests_total",
			Help:      "Total number of LLM scoring requests",
		},
		[]string{"model", "status"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RerankRequestsTotal)
	prometheus.MustRegister(RerankDuration)
	prometheus.MustRegister(RerankFallbacksTotal)
	prometheus.MustRegister(RerankDroppedTotal)
	prometheus.MustRegister(ScoreCacheTotal)
	prometheus.MustRegister(RetrievalPassesTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(ScoringRequestsTotal)
	retrievalMetricsRegistered = true
}
