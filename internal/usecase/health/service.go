// Package health aggregates dependency checks for the /health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates a critical component is failing.
	Unhealthy Status = "error"
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

type namedCheck struct {
	name     string
	check    func(ctx context.Context) error
	critical bool
}

// Service coordinates health checks.
type Service struct {
	checks []namedCheck
}

// New creates a Service. A non-nil db is registered as the critical "database" check.
func New(db DBPinger) *Service {
	s := &Service{}
	if db != nil {
		s.checks = append(s.checks, namedCheck{name: "database", check: db.Ping, critical: true})
	}
	return s
}

// WithCheck registers an optional component. Its failure degrades the report.
func (s *Service) WithCheck(name string, c Checker) *Service {
	if c != nil {
		s.checks = append(s.checks, namedCheck{name: name, check: c.HealthCheck})
	}
	return s
}

// WithCriticalCheck registers a component whose failure makes the service unhealthy.
func (s *Service) WithCriticalCheck(name string, c Checker) *Service {
	if c != nil {
		s.checks = append(s.checks, namedCheck{name: name, check: c.HealthCheck, critical: true})
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	status := Healthy

	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			checks[c.name] = CheckError
			if c.critical {
				status = Unhealthy
			} else if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[c.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
