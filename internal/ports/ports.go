// Package ports defines the boundary interfaces the control plane depends on
// but does not implement directly here: the monitored service's health
// endpoint, the container runtime, and persistent storage. Concrete
// adapters live under internal/adapters and internal/storage.
package ports

import (
	"context"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
)

// ContainerState is the subset of runtime states the actuator cares about.
type ContainerState string

const (
	ContainerRunning    ContainerState = "running"
	ContainerExited     ContainerState = "exited"
	ContainerCreated    ContainerState = "created"
	ContainerPaused     ContainerState = "paused"
	ContainerRestarting ContainerState = "restarting"
	ContainerRemoving   ContainerState = "removing"
	ContainerDead       ContainerState = "dead"
)

// ContainerRuntime is the container-runtime contract from §6: get, restart,
// start, stop, and read status of a named container.
type ContainerRuntime interface {
	Get(ctx context.Context, name string) (ContainerState, error)
	Restart(ctx context.Context, name string, timeoutSec int) error
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string, timeoutSec int) error
	Status(ctx context.Context, name string) (ContainerState, error)
}

// ReplicaAware is an optional capability a ContainerRuntime may implement to
// let the strategy know a replica already exists for a target, enabling the
// scale_replicas extension point in §4.4's table footnote.
type ReplicaAware interface {
	HasReplica(ctx context.Context, target string) bool
}

// Store is the persistence contract from §4.7.
type Store interface {
	LogIncident(ctx context.Context, incident domain.Incident) (int64, error)
	LogAction(ctx context.Context, action domain.RemediationAction) (int64, error)
	ResolveIncident(ctx context.Context, id int64, now time.Time) error
	EscalateIncident(ctx context.Context, id int64, reason string) error
	ReadThresholds(ctx context.Context) (domain.ThresholdConfig, error)
	ReadBreakerConfig(ctx context.Context) (domain.BreakerConfig, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (incidentsDeleted, actionsDeleted int64, err error)
	ListActiveIncidents(ctx context.Context) ([]domain.Incident, error)
}
