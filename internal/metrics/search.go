package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// CacheResult counts cache lookups by outcome (hit, miss) and cache
	// name (search, facets).
	CacheResult = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "cache_result_total",
			Help:      "Cache lookups by cache name and outcome",
		},
		[]string{"cache", "result"},
	)

	// SearchLatency is a search/facets usecase duration histogram,
	// separate from the HTTP middleware histogram. It is registered at
	// init, but no code in this module observes it, so it records no
	// samples.
	SearchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "catalog_search",
			Name:      "query_duration_seconds",
			Help:      "Search/facets usecase duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// BreakerState reports the current state of each named circuit
	// breaker as a gauge (0=closed, 1=half-open, 2=open) so it can be
	// graphed alongside error-rate panels.
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalog_search",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// BreakerErrorRate reports the rolling-window error rate feeding a
	// breaker's open/close decision.
	BreakerErrorRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalog_search",
			Name:      "breaker_error_rate",
			Help:      "Circuit breaker rolling-window error rate",
		},
		[]string{"breaker"},
	)

	// RateLimitRejections counts requests rejected by the distributed
	// rate limiter, labeled by the throttle key's scope.
	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_search",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(CacheResult, SearchLatency, BreakerState, BreakerErrorRate, RateLimitRejections)
}

// BreakerStateValue maps a breaker state name to the gauge value used by
// BreakerState.
func BreakerStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
