package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumefire", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumefire", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	VersionOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumefire", Name: "version_operations_total", Help: "Version store mutations by operation and result."},
		[]string{"op", "result"},
	)
	HistoryEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumefire", Name: "history_evictions_total", Help: "Documents permanently removed from history, by reason (truncate|delete)."},
		[]string{"reason"},
	)
	MergeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "resumefire", Name: "merge_results_total", Help: "Generator candidates merged, by result (ok|malformed)."},
		[]string{"result"},
	)
	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "resumefire", Name: "generation_duration_seconds", Help: "Latency of generator gateway calls.", Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80}},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(VersionOperations)
	reg.MustRegister(HistoryEvictions)
	reg.MustRegister(MergeResults)
	reg.MustRegister(GenerationDuration)
}
