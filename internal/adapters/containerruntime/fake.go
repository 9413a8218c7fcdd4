package containerruntime

import (
	"context"
	"sync"

	"github.com/sarika-03/controlplane/internal/errs"
	"github.com/sarika-03/controlplane/internal/ports"
)

// Fake is an in-memory ports.ContainerRuntime for tests, tracking per-target
// state and an explicit replica set so strategy/actuator tests don't need a
// live Docker daemon.
type Fake struct {
	mu       sync.Mutex
	states   map[string]ports.ContainerState
	replicas map[string]bool
}

// NewFake creates an empty Fake. A target must be registered with Seed
// before Restart, Stop or Status find it; Start registers it as running.
func NewFake() *Fake {
	return &Fake{
		states:   make(map[string]ports.ContainerState),
		replicas: make(map[string]bool),
	}
}

// Seed sets a target's initial state.
func (f *Fake) Seed(target string, state ports.ContainerState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[target] = state
}

// SeedReplica marks a target as having a standby replica available.
func (f *Fake) SeedReplica(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replicas[target] = true
}

func (f *Fake) Get(ctx context.Context, name string) (ports.ContainerState, error) {
	return f.Status(ctx, name)
}

func (f *Fake) Restart(ctx context.Context, name string, timeoutSec int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[name]; !ok {
		return errs.ErrNotFound
	}
	f.states[name] = ports.ContainerRunning
	return nil
}

func (f *Fake) Start(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[name] = ports.ContainerRunning
	return nil
}

func (f *Fake) Stop(ctx context.Context, name string, timeoutSec int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[name]; !ok {
		return errs.ErrNotFound
	}
	f.states[name] = ports.ContainerExited
	return nil
}

func (f *Fake) Status(ctx context.Context, name string) (ports.ContainerState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[name]
	if !ok {
		return "", errs.ErrNotFound
	}
	return state, nil
}

// HasReplica implements ports.ReplicaAware.
func (f *Fake) HasReplica(ctx context.Context, target string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replicas[target]
}
