// Package usecase holds the small pieces shared by the search and facets
// usecases: the cache-key helpers (cachekey.go) and the per-request
// profiler used for the canonical log line's stage breakdown (spec §7).
package usecase

import "time"

// Profiler accumulates named stage durations for a single request. It
// is built fresh per request and used by exactly one goroutine, so it
// carries no synchronization.
type Profiler struct {
	start  time.Time
	stages map[string]time.Duration
	order  []string
}

// NewProfiler starts a profiler, its clock running from this call.
func NewProfiler() *Profiler {
	return &Profiler{start: time.Now(), stages: make(map[string]time.Duration)}
}

// Track runs fn and records its duration under name.
func (p *Profiler) Track(name string, fn func()) {
	started := time.Now()
	fn()
	p.add(name, time.Since(started))
}

func (p *Profiler) add(name string, d time.Duration) {
	if _, ok := p.stages[name]; !ok {
		p.order = append(p.order, name)
	}
	p.stages[name] += d
}

// Total returns elapsed time since the profiler was created.
func (p *Profiler) Total() time.Duration { return time.Since(p.start) }

// Fields returns the stage breakdown plus "total", for attaching to a
// structured log line.
func (p *Profiler) Fields() map[string]time.Duration {
	out := make(map[string]time.Duration, len(p.stages)+1)
	for k, v := range p.stages {
		out[k] = v
	}
	out["total"] = p.Total()
	return out
}
