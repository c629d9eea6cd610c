package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Rating writes by operation (submit, update, delete)
	RatingWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_rating_writes_total",
		Help: "Total rating write operations, labelled by op",
	}, []string{"op"})

	// Duplicate submits rejected by the uniqueness constraint or pre-check
	RatingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_rating_conflicts_total",
		Help: "Submits rejected because the user already rated the store",
	})

	// Latency of the transactional aggregate recompute
	AggregateRecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_aggregate_recompute_seconds",
		Help:    "Latency of store aggregate recomputation",
		Buckets: prometheus.DefBuckets,
	})

	// Store listing requests served
	StoreListRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_list_requests_total",
		Help: "Total store listing requests served",
	})
)

func Init() {
	prometheus.MustRegister(
		RatingWrites,
		RatingConflicts,
		AggregateRecomputeDuration,
		StoreListRequests,
	)
}
