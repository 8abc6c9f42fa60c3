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

// Component names used as Report.Checks keys.
const (
	ComponentCache  = "cache"
	ComponentEngine = "engine"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Errors holds the failure of every check that did not pass.
	Errors map[string]error
}

// Service coordinates health checks.
type Service struct {
	cache  Pinger
	engine Pinger
}

// New creates a Service. Either dependency can be nil and is then not checked.
func New(cache, engine Pinger) *Service {
	return &Service{cache: cache, engine: engine}
}

// Check pings every configured dependency.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult), Errors: make(map[string]error)}
	s.check(ctx, &r, ComponentCache, s.cache)
	s.check(ctx, &r, ComponentEngine, s.engine)
	return r
}

func (s *Service) check(ctx context.Context, r *Report, name string, p Pinger) {
	if p == nil {
		return
	}
	if err := p.Ping(ctx); err != nil {
		r.Checks[name] = CheckError
		r.Errors[name] = err
		r.Status = Degraded
		return
	}
	r.Checks[name] = CheckOK
}
