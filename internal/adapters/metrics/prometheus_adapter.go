package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup outcomes.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Write and invalidation outcomes.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realty_cache_lookups_total",
			Help: "Cache lookups by query class and outcome.",
		},
		[]string{"class", "outcome"},
	)

	CacheWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realty_cache_writes_total",
			Help: "Cache writes by query class and result.",
		},
		[]string{"class", "result"},
	)

	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realty_cache_invalidations_total",
			Help: "Pattern invalidations by result.",
		},
		[]string{"result"},
	)

	CacheKeysInvalidatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realty_cache_keys_invalidated_total",
			Help: "Number of cache keys deleted by invalidations.",
		},
	)

	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "realty_cache_breaker_state",
			Help: "Cache store circuit breaker state (0 closed, 1 half-open, 2 open).",
		},
		[]string{"breaker"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "realty_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveLookup records a cache lookup outcome for a query class.
func ObserveLookup(class, outcome string) {
	CacheLookupsTotal.WithLabelValues(class, outcome).Inc()
}

// ObserveWrite records a cache write result for a query class.
func ObserveWrite(class, result string) {
	CacheWritesTotal.WithLabelValues(class, result).Inc()
}

// ObserveInvalidation records the result of one pattern invalidation and how many keys it removed.
func ObserveInvalidation(result string, deleted int) {
	CacheInvalidationsTotal.WithLabelValues(result).Inc()
	CacheKeysInvalidatedTotal.Add(float64(deleted))
}

// SetBreakerState publishes the numeric state of a named circuit breaker.
func SetBreakerState(name string, state float64) {
	CacheBreakerState.WithLabelValues(name).Set(state)
}
