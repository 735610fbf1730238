// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PartitionScanFailures counts partitions skipped during a cross-partition scan.
	PartitionScanFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealshare",
		Name:      "partition_scan_failures_total",
		Help:      "Owner partitions skipped because reading them failed.",
	}, []string{"operation"})

	// OwnerHintLookups counts resolver hint outcomes: hit, miss, stale, error.
	OwnerHintLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealshare",
		Name:      "owner_hint_lookups_total",
		Help:      "Recipe owner hint cache lookups by result.",
	}, []string{"result"})

	// EngagementMutations counts like/unlike/save/unsave calls by outcome: applied or noop.
	EngagementMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealshare",
		Name:      "engagement_mutations_total",
		Help:      "Engagement set mutations by operation and outcome.",
	}, []string{"op", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mealshare",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome labels a mutation that changed state or was an idempotent no-op.
func Outcome(changed bool) string {
	if changed {
		return "applied"
	}
	return "noop"
}
