// Package detector implements the threshold-breach detector chain (C2):
// each detector inspects a Snapshot against policy thresholds and emits at
// most one Incident. The chain runs every detector every tick — detectors
// are independent, not short-circuiting — so a single snapshot can raise
// several distinct incident types at once.
package detector

import (
	"fmt"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/observability"
)

// Detector inspects a snapshot and optionally returns an Incident.
type Detector interface {
	Detect(snapshot domain.Snapshot, thresholds domain.ThresholdConfig, now time.Time) (domain.Incident, bool)
}

// Chain runs every registered Detector against a Snapshot.
type Chain struct {
	detectors []Detector
	log       observability.Logger
}

// NewChain builds a detector chain from the given detectors, run in order
// every tick.
func NewChain(detectors ...Detector) *Chain {
	return &Chain{detectors: detectors}
}

// SetLogger attaches a logger used to report a detector panic without
// taking down the monitor loop. Optional — a Chain with no logger still
// recovers, it just doesn't report.
func (c *Chain) SetLogger(log observability.Logger) {
	c.log = log
}

// DefaultDetectors returns the three pure-threshold detectors that run
// through Chain.Run. Health-check failures never reach Chain.Run: the probe
// itself fails before a Snapshot exists, so the monitor loop builds that
// incident directly via NewHealthCheckIncident.
func DefaultDetectors() []Detector {
	return []Detector{
		ErrorRateDetector{},
		CPUSpikeDetector{},
		ResponseTimeDetector{},
	}
}

// Run evaluates every detector against the snapshot and returns all raised
// incidents (unresolved, un-deduplicated — dedup happens at the caller). A
// detector that panics is recovered and skipped rather than taking the rest
// of the chain (and the monitor tick) down with it, matching the teacher's
// continue-on-error loops elsewhere in the pipeline.
func (c *Chain) Run(snapshot domain.Snapshot, thresholds domain.ThresholdConfig, now time.Time) []domain.Incident {
	var out []domain.Incident
	for _, d := range c.detectors {
		if inc, ok := c.runOne(d, snapshot, thresholds, now); ok {
			out = append(out, inc)
		}
	}
	return out
}

func (c *Chain) runOne(d Detector, snapshot domain.Snapshot, thresholds domain.ThresholdConfig, now time.Time) (inc domain.Incident, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if c.log != nil {
				c.log.Error("detector panicked, skipping", observability.String("detector", detectorName(d)))
			}
		}
	}()
	return d.Detect(snapshot, thresholds, now)
}

func detectorName(d Detector) string {
	return fmt.Sprintf("%T", d)
}

// NewHealthCheckIncident builds the incident for a failed probe. Called
// directly by the monitor loop, which has the failure category the HTTP
// probe returned.
func NewHealthCheckIncident(service string, category domain.ProbeFailureCategory, now time.Time) domain.Incident {
	return domain.NewIncident(
		domain.IncidentHealthCheckFailed,
		domain.SeverityCritical,
		service,
		map[string]interface{}{"failure_category": string(category)},
		now,
	)
}

// ErrorRateDetector fires when Snapshot.Metrics.ErrorRate exceeds the
// configured threshold. Severity is a pure ladder on how far over
// threshold the rate is — CRITICAL above 3x, WARNING otherwise — not on
// the error_spike flag, which this incident type doesn't consult at all.
type ErrorRateDetector struct{}

func (ErrorRateDetector) Detect(s domain.Snapshot, t domain.ThresholdConfig, now time.Time) (domain.Incident, bool) {
	if s.Metrics.ErrorRate <= t.ErrorRate {
		return domain.Incident{}, false
	}
	sev := domain.SeverityWarning
	if s.Metrics.ErrorRate > t.ErrorRate*3 {
		sev = domain.SeverityCritical
	}
	return domain.NewIncident(domain.IncidentHighErrorRate, sev, s.Service, map[string]interface{}{
		"error_rate":     s.Metrics.ErrorRate,
		"threshold":      t.ErrorRate,
		"total_requests": s.Metrics.TotalRequests,
		"total_errors":   s.Metrics.TotalErrors,
	}, now), true
}

// CPUSpikeDetector fires when Snapshot.Metrics.CPUPercent exceeds the
// configured threshold OR the monitored service reports flags.cpu_spike —
// the flag is an independent trigger, not just a severity signal. Severity
// is a ladder on cpuPercent vs. 1.2x threshold; the flag only ever appears
// in details.simulated.
type CPUSpikeDetector struct{}

func (CPUSpikeDetector) Detect(s domain.Snapshot, t domain.ThresholdConfig, now time.Time) (domain.Incident, bool) {
	if s.Metrics.CPUPercent <= t.CPUPercent && !s.Flags.CPUSpike {
		return domain.Incident{}, false
	}
	sev := domain.SeverityWarning
	if s.Metrics.CPUPercent > t.CPUPercent*1.2 {
		sev = domain.SeverityCritical
	}
	return domain.NewIncident(domain.IncidentCPUSpike, sev, s.Service, map[string]interface{}{
		"cpu_percent": s.Metrics.CPUPercent,
		"threshold":   t.CPUPercent,
		"simulated":   s.Flags.CPUSpike,
	}, now), true
}

// ResponseTimeDetector fires when the p95 response time exceeds the
// configured threshold. A missing p95 sample (nil) means the detector
// abstains rather than treating absence as a breach. Severity is CRITICAL
// above 2x threshold, WARNING otherwise.
type ResponseTimeDetector struct{}

func (ResponseTimeDetector) Detect(s domain.Snapshot, t domain.ThresholdConfig, now time.Time) (domain.Incident, bool) {
	if s.Metrics.P95Ms == nil || *s.Metrics.P95Ms <= t.ResponseTimeMs {
		return domain.Incident{}, false
	}
	sev := domain.SeverityWarning
	if *s.Metrics.P95Ms > t.ResponseTimeMs*2 {
		sev = domain.SeverityCritical
	}
	return domain.NewIncident(domain.IncidentHighResponseTime, sev, s.Service, map[string]interface{}{
		"p95_ms":    *s.Metrics.P95Ms,
		"threshold": t.ResponseTimeMs,
		"p50_ms":    s.Metrics.P50Ms,
		"p99_ms":    s.Metrics.P99Ms,
	}, now), true
}
