package domain

import (
	"errors"
	"time"
)

// ActionType enumerates the remediation operations the actuator can perform.
type ActionType string

const (
	ActionRestartContainer ActionType = "restart_container"
	ActionStartReplica     ActionType = "start_replica"
	ActionStopReplica      ActionType = "stop_replica"
	ActionScaleReplicas    ActionType = "scale_replicas"
)

// TriggeredBy records who caused an action to run.
type TriggeredBy string

const (
	TriggeredByBot    TriggeredBy = "bot"
	TriggeredByAPI    TriggeredBy = "api"
	TriggeredByManual TriggeredBy = "manual"
)

// ErrActionNeedsIncident is returned by NewAction when a non-manual action is
// constructed without a linked incident, per §3's invariant that every
// action references an incident unless triggeredBy is manual.
var ErrActionNeedsIncident = errors.New("non-manual action must reference an incident")

// RemediationAction is the persisted record of a mutation attempted against
// a container, attributed to the incident that caused it.
type RemediationAction struct {
	ID              int64
	IncidentID      int64
	Timestamp       time.Time
	ActionType      ActionType
	Target          string
	ScaleReplicas   int // only meaningful when ActionType == ActionScaleReplicas
	Success         bool
	ErrorMessage    string
	ExecutionTimeMs int64
	TriggeredBy     TriggeredBy
}

// NewAction builds a RemediationAction, enforcing the incident-linkage
// invariant before it ever reaches the store.
func NewAction(incidentID int64, actionType ActionType, target string, triggeredBy TriggeredBy, now time.Time) (RemediationAction, error) {
	if incidentID == 0 && triggeredBy != TriggeredByManual {
		return RemediationAction{}, ErrActionNeedsIncident
	}
	return RemediationAction{
		IncidentID:  incidentID,
		Timestamp:   now,
		ActionType:  actionType,
		Target:      target,
		TriggeredBy: triggeredBy,
	}, nil
}
