package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Duration of materializer refresh cycles, labelled by outcome
	RefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "experience_refresh_duration_seconds",
		Help:    "Duration of experience snapshot refreshes",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})

	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "experience_refresh_total",
		Help: "Count of experience snapshot refreshes by outcome",
	}, []string{"outcome"})

	SnapshotRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "experience_snapshot_records",
		Help: "Number of records in the live experience snapshot",
	})

	SnapshotVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "experience_snapshot_version",
		Help: "Version of the live experience snapshot",
	})

	StatsCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_cache_requests_total",
		Help: "Stats cache lookups by result (hit, shared_hit, miss)",
	}, []string{"result"})

	StatsComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_computations_total",
		Help: "All-drug statistics computations by outcome",
	}, []string{"outcome"})

	StatsCacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stats_cache_invalidations_total",
		Help: "Explicit stats cache invalidations",
	})

	// 0 closed, 1 half-open, 2 open
	RecommenderBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recommender_circuit_breaker_state",
		Help: "State of the recommender circuit breaker",
	})
)

func Init() {
	prometheus.MustRegister(
		RefreshDuration,
		RefreshTotal,
		SnapshotRecords,
		SnapshotVersion,
		StatsCacheRequests,
		StatsComputations,
		StatsCacheInvalidations,
		RecommenderBreakerState,
	)
}
