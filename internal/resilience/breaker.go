// Package resilience implements the circuit breaker and deadline helpers
// that wrap every external dependency call (spec §5). The state machine
// is small enough to implement inline, so no external breaker library is
// used: a single mutex guards the state and the rolling-window bucket
// counters alike.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Execute when the breaker is open and fails fast.
var ErrOpen = errors.New("circuit breaker open")

// State is one of the three circuit breaker states (spec §5).
type State string

const (
	Closed   State = "closed"
	Open     State = "open"
	HalfOpen State = "half-open"
)

// Config tunes a single breaker's thresholds.
type Config struct {
	// ErrorThreshold is the failure ratio (0-1) that trips the breaker,
	// once VolumeThreshold is met, within the rolling window.
	ErrorThreshold float64
	// VolumeThreshold is the minimum number of calls in the rolling
	// window before the error ratio is evaluated at all.
	VolumeThreshold int
	// ResetTimeout is how long the breaker stays open before allowing a
	// single half-open probe.
	ResetTimeout time.Duration
	// Window is the total rolling-window duration, divided into Buckets
	// equal slices.
	Window time.Duration
	// Buckets is the number of slices the rolling window is divided into.
	Buckets int
}

// DefaultConfig matches spec §5's defaults: 50% error threshold, 5
// minimum calls, a 10s window split into 10 one-second buckets, 30s
// reset timeout.
func DefaultConfig() Config {
	return Config{
		ErrorThreshold:  0.5,
		VolumeThreshold: 5,
		ResetTimeout:    30 * time.Second,
		Window:          10 * time.Second,
		Buckets:         10,
	}
}

type bucket struct {
	start     time.Time
	successes int
	failures  int
}

// Breaker is a single dependency's circuit breaker.
type Breaker struct {
	name string
	cfg  Config

	mu            sync.Mutex
	state         State
	buckets       []bucket
	openedAt      time.Time
	halfOpenBusy  bool
}

// New creates a named breaker. name identifies the dependency for metrics
// and logging (e.g. "engine-search", "catalog-variants").
func New(name string, cfg Config) *Breaker {
	return &Breaker{
		name:    name,
		cfg:     cfg,
		state:   Closed,
		buckets: make([]bucket, cfg.Buckets),
	}
}

// Name returns the breaker's dependency name.
func (b *Breaker) Name() string { return b.name }

// State returns the breaker's current state, resolving an expired open
// state to half-open the way GetState does in the reference breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.effectiveState(time.Now())
}

// effectiveState must be called with the lock held.
func (b *Breaker) effectiveState(now time.Time) State {
	if b.state == Open && now.After(b.openedAt.Add(b.cfg.ResetTimeout)) {
		return HalfOpen
	}
	return b.state
}

// Stats reports counts and the error ratio over the current rolling
// window, for the "per-breaker state + stats" metric spec §7 calls for.
type Stats struct {
	State     State
	Successes int
	Failures  int
	ErrorRate float64
}

func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, f := b.windowCounts(time.Now())
	var rate float64
	if s+f > 0 {
		rate = float64(f) / float64(s+f)
	}
	return Stats{State: b.effectiveState(time.Now()), Successes: s, Failures: f, ErrorRate: rate}
}

// Execute runs fn through the breaker. If the breaker is open, fn is not
// called and ErrOpen is returned immediately (fail-fast, spec §8 scenario
// 5: <50ms). In half-open state, only a single probe call is allowed
// through at a time; concurrent callers get ErrOpen.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn(ctx)
	b.record(err == nil)
	return err
}

// allow decides whether a call may proceed, and marks a half-open probe
// in-flight if this call is that probe.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state := b.effectiveState(now)

	switch state {
	case Closed:
		return true
	case HalfOpen:
		if b.halfOpenBusy {
			return false
		}
		b.state = HalfOpen
		b.halfOpenBusy = true
		return true
	default: // Open, not yet eligible for probe
		return false
	}
}

// record reports the outcome of a call and drives state transitions.
func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()

	switch b.state {
	case HalfOpen:
		b.halfOpenBusy = false
		if success {
			b.state = Closed
			b.resetWindow()
		} else {
			b.state = Open
			b.openedAt = now
		}
		return
	case Open:
		// A stray call recorded while open (e.g. probe race) — ignore for
		// state purposes but still tally it.
		b.touchBucket(now, success)
		return
	}

	b.touchBucket(now, success)

	successes, failures := b.windowCounts(now)
	total := successes + failures
	if total < b.cfg.VolumeThreshold {
		return
	}
	if float64(failures)/float64(total) >= b.cfg.ErrorThreshold {
		b.state = Open
		b.openedAt = now
	}
}

func (b *Breaker) resetWindow() {
	b.buckets = make([]bucket, b.cfg.Buckets)
}

func (b *Breaker) bucketWidth() time.Duration {
	return b.cfg.Window / time.Duration(b.cfg.Buckets)
}

func (b *Breaker) bucketIndex(t time.Time) int {
	width := b.bucketWidth()
	return int(t.UnixNano()/int64(width)) % b.cfg.Buckets
}

// touchBucket records one outcome, resetting any bucket whose slot has
// aged out of the rolling window.
func (b *Breaker) touchBucket(now time.Time, success bool) {
	idx := b.bucketIndex(now)
	width := b.bucketWidth()
	slotStart := now.Truncate(width)

	bk := &b.buckets[idx]
	if bk.start != slotStart {
		bk.start = slotStart
		bk.successes = 0
		bk.failures = 0
	}
	if success {
		bk.successes++
	} else {
		bk.failures++
	}
}

// windowCounts sums counts across buckets still inside the rolling window.
func (b *Breaker) windowCounts(now time.Time) (successes, failures int) {
	cutoff := now.Add(-b.cfg.Window)
	for _, bk := range b.buckets {
		if bk.start.IsZero() || bk.start.Before(cutoff) {
			continue
		}
		successes += bk.successes
		failures += bk.failures
	}
	return
}
