// Package strategy maps an incident type to the remediation action the
// actuator should take (C4). The mapping is deliberately a pure function of
// incident type plus replica awareness, not stateful — statefulness (rate
// limiting, cooldowns) is the breaker's job, not the strategy's.
package strategy

import (
	"context"

	"github.com/sarika-03/controlplane/internal/domain"
)

// ReplicaChecker reports whether a target already has a standby replica,
// letting the strategy choose start_replica/scale_replicas over a bare
// restart when one exists. Satisfied by ports.ReplicaAware.
type ReplicaChecker interface {
	HasReplica(ctx context.Context, target string) bool
}

// Strategy selects a RemediationAction for an Incident.
type Strategy struct {
	replicas ReplicaChecker
}

// New creates a Strategy. replicas may be nil, in which case every
// incident that has a mapping maps to a plain restart.
func New(replicas ReplicaChecker) *Strategy {
	return &Strategy{replicas: replicas}
}

// Select picks the ActionType for the given incident. ok is false when the
// table has no mapping for this incident — a non-CRITICAL ml_anomaly, a
// predicted_failure (notify-only, never reaches Select in practice since
// the monitor loop special-cases it before calling the strategy), or any
// other type the table leaves unmapped. Callers must treat ok=false as "no
// action": skip the breaker and actuator entirely and leave the incident
// ACTIVE, exactly as if C4.decide had returned nothing.
func (s *Strategy) Select(ctx context.Context, inc domain.Incident, target string) (domain.ActionType, bool) {
	hasReplica := s.replicas != nil && s.replicas.HasReplica(ctx, target)

	switch inc.Type {
	case domain.IncidentHealthCheckFailed:
		if hasReplica {
			return domain.ActionStartReplica, true
		}
		return domain.ActionRestartContainer, true
	case domain.IncidentHighErrorRate, domain.IncidentCPUSpike, domain.IncidentHighResponseTime:
		if hasReplica {
			return domain.ActionScaleReplicas, true
		}
		return domain.ActionRestartContainer, true
	case domain.IncidentMLAnomaly:
		if inc.Severity != domain.SeverityCritical {
			return "", false
		}
		return domain.ActionRestartContainer, true
	default:
		return "", false
	}
}
