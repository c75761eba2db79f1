package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates readiness checks against the search engine, the
// relational catalog store, and the cache/rate-limiter store. A failure
// in any one of them degrades Check's report (CheckReady ignores the
// cache) but does not itself return an error — callers decide how to
// translate Report into an HTTP status.
type Service struct {
	engine  Pinger
	catalog Pinger
	cache   Pinger
}

// New creates a Service.
func New(engine, catalog, cache Pinger) *Service {
	return &Service{engine: engine, catalog: catalog, cache: cache}
}

// Check runs health checks against all components (spec §6's /health:
// 503 on any component unhealthy, cache included).
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks["engine"] = ping(ctx, s.engine)
	checks["catalog"] = ping(ctx, s.catalog)
	checks["cache"] = ping(ctx, s.cache)

	return aggregate(checks)
}

// CheckReady runs readiness checks against engine and catalog only,
// deliberately excluding cache (spec §6's /health/ready: 503 only "if
// engine or relational down"). A cache outage degrades gracefully — the
// cache repository treats a failed call as a miss/no-op (spec §4.6,
// §7) — so it must never flip readiness and pull the instance out of a
// load balancer over something that isn't actually failing requests.
func (s *Service) CheckReady(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	checks["engine"] = ping(ctx, s.engine)
	checks["catalog"] = ping(ctx, s.catalog)

	return aggregate(checks)
}

func aggregate(checks map[string]CheckResult) Report {
	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
