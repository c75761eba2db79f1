// Package ratelimit implements the distributed fixed-window rate
// limiter keyed by client identity, backed by the shared Redis store.
// Unlike an in-process token bucket, the window counter lives in Redis
// so it is correct across horizontally-scaled gateway instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store is the counter dependency the limiter is built on.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Limiter is a Redis-backed fixed-window counter.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// New creates a Limiter allowing up to limit requests per window.
func New(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow increments the window counter for scope and reports whether the
// request is within limit. The first increment in a window also opens
// the window's expiry via EXPIRE NX, so the counter resets exactly once
// per window without a separate round-trip race.
func (l *Limiter) Allow(ctx context.Context, scope string) (bool, error) {
	key := fmt.Sprintf("throttle:%s", scope)

	count, err := l.store.IncrBy(ctx, key, 1)
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window, true); err != nil {
			return false, fmt.Errorf("set rate limit window expiry: %w", err)
		}
	}

	return count <= l.limit, nil
}
