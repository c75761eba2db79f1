package metrics

import (
	"context"
	"time"

	"github.com/kailas-cloud/catalog-search-gateway/internal/resilience"
)

// StartBreakerReporter polls each named breaker's stats on a fixed
// interval and publishes them as gauges, until ctx is cancelled. Run as
// a background goroutine from the composition root.
func StartBreakerReporter(ctx context.Context, interval time.Duration, breakers map[string]*resilience.Breaker) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report := func() {
		for name, b := range breakers {
			stats := b.Stats()
			BreakerState.WithLabelValues(name).Set(BreakerStateValue(string(stats.State)))
			BreakerErrorRate.WithLabelValues(name).Set(stats.ErrorRate)
		}
	}

	report()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report()
		}
	}
}
