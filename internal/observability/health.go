package observability

import (
	"context"
	"time"
)

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) HealthCheckResult

// HealthCheckResult is the outcome of a single health check.
type HealthCheckResult struct {
	Status    string
	Message   string
	Duration  time.Duration
	Timestamp time.Time
}

// HealthStatus is the aggregate of all registered health checks.
type HealthStatus struct {
	Status string
	Checks map[string]HealthCheckResult
}

// HealthChecker aggregates named HealthChecks into an overall HealthStatus.
type HealthChecker struct {
	checks map[string]HealthCheck
}

// NewHealthChecker creates an empty HealthChecker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]HealthCheck)}
}

// RegisterCheck adds a named check.
func (hc *HealthChecker) RegisterCheck(name string, check HealthCheck) {
	hc.checks[name] = check
}

// CheckHealth runs every registered check and rolls the results up.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	results := make(map[string]HealthCheckResult, len(hc.checks))
	overall := "healthy"

	for name, check := range hc.checks {
		start := time.Now()
		result := check(ctx)
		result.Duration = time.Since(start)
		result.Timestamp = start
		results[name] = result

		if result.Status != "healthy" {
			overall = "unhealthy"
		}
	}

	return HealthStatus{Status: overall, Checks: results}
}
