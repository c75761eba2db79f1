package resilience

import (
	"context"
	"time"
)

// WithTimeout derives a per-call deadline from ctx, capped to d. The
// engine and catalog adapters put every call through this so cancellation
// releases connections promptly (spec §5); cache and rate-limiter calls
// run on the caller's context as is. Callers must invoke the returned
// cancel func once the call returns.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// Background detaches a context from its parent's cancellation while
// keeping its values (e.g. the request logger). Used for the cache
// write-back at the end of a successful request, which must complete
// opportunistically even if the client already disconnected (spec §5).
func Background(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
