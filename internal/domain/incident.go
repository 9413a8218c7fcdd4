package domain

import (
	"errors"
	"time"
)

// IncidentType enumerates the kinds of breach the detector chain can emit.
type IncidentType string

const (
	IncidentHealthCheckFailed  IncidentType = "health_check_failed"
	IncidentHighErrorRate      IncidentType = "high_error_rate"
	IncidentCPUSpike           IncidentType = "cpu_spike"
	IncidentHighResponseTime   IncidentType = "high_response_time"
	IncidentMLAnomaly          IncidentType = "ml_anomaly"
	IncidentPredictedFailure   IncidentType = "predicted_failure"
)

// Severity ranks how urgently an incident needs attention.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// IncidentStatus tracks the lifecycle of an Incident.
type IncidentStatus string

const (
	StatusActive    IncidentStatus = "ACTIVE"
	StatusResolved  IncidentStatus = "RESOLVED"
	StatusEscalated IncidentStatus = "ESCALATED"
)

// ErrAlreadyResolved is returned when a caller tries to resolve an incident
// a second time; the incident is left unchanged.
var ErrAlreadyResolved = errors.New("incident already resolved")

// ErrResolvedIsTerminal names the forbidden RESOLVED -> ACTIVE transition.
// No method in this package moves an incident back to ACTIVE, so nothing
// here returns it.
var ErrResolvedIsTerminal = errors.New("cannot reopen a resolved incident")

// Incident is the persisted record of a detected threshold breach.
type Incident struct {
	ID                     int64
	Timestamp              time.Time
	Type                   IncidentType
	Severity               Severity
	Details                map[string]interface{}
	Status                 IncidentStatus
	AffectedService        string
	ResolvedAt             *time.Time
	ResolutionTimeSeconds  *float64
}

// NewIncident constructs an ACTIVE incident ready for persistence. The id is
// assigned by the store on insert, so it is left zero here.
func NewIncident(typ IncidentType, sev Severity, service string, details map[string]interface{}, now time.Time) Incident {
	if details == nil {
		details = map[string]interface{}{}
	}
	return Incident{
		Timestamp:       now,
		Type:            typ,
		Severity:        sev,
		Details:         details,
		Status:          StatusActive,
		AffectedService: service,
	}
}

// Resolve transitions an ACTIVE incident to RESOLVED, stamping resolvedAt and
// deriving resolutionTimeSeconds. Called on an already-RESOLVED incident it
// changes nothing and returns ErrAlreadyResolved. An ESCALATED incident is
// resolved the same way as an ACTIVE one; Resolve does not check who calls it.
func (i *Incident) Resolve(now time.Time) error {
	if i.Status == StatusResolved {
		return ErrAlreadyResolved
	}
	resolvedAt := now
	elapsed := resolvedAt.Sub(i.Timestamp).Seconds()
	i.Status = StatusResolved
	i.ResolvedAt = &resolvedAt
	i.ResolutionTimeSeconds = &elapsed
	return nil
}

// Escalate marks the incident as requiring human attention. ESCALATED is
// terminal for auto-remediation.
func (i *Incident) Escalate(reason string) {
	if i.Details == nil {
		i.Details = map[string]interface{}{}
	}
	i.Details["escalation_reason"] = reason
	i.Status = StatusEscalated
}
