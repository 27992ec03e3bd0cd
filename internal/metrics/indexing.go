package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and search Prometheus metrics.
var (
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "publish_total",
			Help:      "Total publish attempts by object kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: indexed, skipped, unsupported, error
	)

	UpsertFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "upsert_insert_fallback_total",
			Help:      "Replace-by-id misses repaired by insert-by-id (first writes)",
		},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "search_requests_total",
			Help:      "Total search requests by mode and status",
		},
		[]string{"mode", "status"}, // status: success, degraded, error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ticketsearch",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	RefetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "external_refetch_total",
			Help:      "Live refetches from the external tracker by result",
		},
		[]string{"source", "result"}, // result: success, fallback
	)

	SyncRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "sync_records_total",
			Help:      "Records walked by project resync, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsearch",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ticketsearch",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

// Register registers all indexing, search, and embedding metrics explicitly
// (no init()).
func Register() {
	prometheus.MustRegister(
		PublishTotal,
		UpsertFallbackTotal,
		SearchRequestsTotal,
		SearchDuration,
		RefetchTotal,
		SyncRecordsTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
	)
}
