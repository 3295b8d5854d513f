// Package metrics 汇总 store/manager 的 Prometheus 指标，所有 collector 在包初始化时注册。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store lookup results.
const (
	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultCoalesced = "coalesced"
	ResultBypass    = "bypass"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	StoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_store_lookups_total",
			Help: "Store lookups by result (hit, miss, coalesced, bypass)",
		},
		[]string{"resource", "result"},
	)

	StoreFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_store_fetches_total",
			Help: "Fetch callbacks dispatched by the store, by outcome",
		},
		[]string{"resource", "outcome"},
	)

	StoreEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resource_store_entries",
			Help: "Number of cached entries per resource store",
		},
		[]string{"resource"},
	)

	StoreEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_store_evictions_total",
			Help: "Entries removed by clean or clear",
		},
		[]string{"resource", "reason"},
	)

	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_api_errors_total",
			Help: "Upstream API errors by status class",
		},
		[]string{"resource", "class"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resource_request_duration_seconds",
			Help:    "Duration of upstream requests issued by resource managers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "operation"},
	)
)

// RecordLookup records one store lookup.
func RecordLookup(resource, result string) {
	StoreLookups.WithLabelValues(resource, result).Inc()
}

// RecordFetch records a settled fetch.
func RecordFetch(resource string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	StoreFetches.WithLabelValues(resource, outcome).Inc()
}

// SetEntries updates the entry gauge of a store.
func SetEntries(resource string, n int) {
	StoreEntries.WithLabelValues(resource).Set(float64(n))
}

// RecordEvictions adds n evictions for the given reason ("clean" or "clear").
func RecordEvictions(resource, reason string, n int) {
	if n <= 0 {
		return
	}
	StoreEvictions.WithLabelValues(resource, reason).Add(float64(n))
}

// RecordAPIError counts an upstream API error.
func RecordAPIError(resource, class string) {
	APIErrors.WithLabelValues(resource, class).Inc()
}

// TimeRequest returns a func that observes the elapsed request duration.
func TimeRequest(resource, operation string) func() {
	timer := prometheus.NewTimer(RequestDuration.WithLabelValues(resource, operation))
	return func() {
		timer.ObserveDuration()
	}
}
