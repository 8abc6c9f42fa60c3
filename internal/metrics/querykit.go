package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "querykit"

// Bulk reconciliation metrics.
var (
	BulkResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_responses_total",
			Help:      "Bulk responses reconciled, by outcome",
		},
		[]string{"outcome"}, // "ok" / "partial_failure"
	)

	BulkFailedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_failed_items_total",
			Help:      "Failed bulk items, by engine error type",
		},
		[]string{"error_type"},
	)
)

// Hydration metrics.
var (
	HydrationChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hydration_checks_total",
			Help:      "Hydration checks, by outcome and configured mode",
		},
		[]string{"outcome", "mode"}, // outcome: "match" / "mismatch"
	)

	HydrationMissingHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hydration_missing_hits_total",
			Help:      "Search hits that could not be resolved to records",
		},
	)
)

// Response cache and embedding metrics.
var (
	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_total",
			Help:      "Search response cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Query embedding requests, by model and status",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Query embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

// Engine transport metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_requests_total",
			Help:      "Requests sent to the search engine, by operation and status",
		},
		[]string{"op", "status"}, // op: "search" / "bulk"
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

var registerOnce sync.Once

// Register registers the querykit metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BulkResponsesTotal,
			BulkFailedItemsTotal,
			HydrationChecksTotal,
			HydrationMissingHitsTotal,
			ResponseCacheTotal,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EngineRequestsTotal,
			EngineRequestDuration,
		)
	})
}

// ObserveBulk records one reconciled bulk response. byType counts failed items per engine
// error type and is ignored when failed is false.
func ObserveBulk(failed bool, byType map[string]int) {
	if !failed {
		BulkResponsesTotal.WithLabelValues("ok").Inc()
		return
	}
	BulkResponsesTotal.WithLabelValues("partial_failure").Inc()
	for typ, n := range byType {
		BulkFailedItemsTotal.WithLabelValues(typ).Add(float64(n))
	}
}

// ObserveHydration records one hydration check under the configured mode.
func ObserveHydration(mode string, missing int, mismatch bool) {
	outcome := "match"
	if mismatch {
		outcome = "mismatch"
		HydrationMissingHitsTotal.Add(float64(missing))
	}
	HydrationChecksTotal.WithLabelValues(outcome, mode).Inc()
}
