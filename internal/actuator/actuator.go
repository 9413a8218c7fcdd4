// Package actuator executes remediation actions against the container
// runtime (C6) and verifies the post-action state, the one place in the
// control plane that actually mutates the monitored system.
package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/errs"
	"github.com/sarika-03/controlplane/internal/ports"
)

// Actuator performs idempotent, verified container operations.
type Actuator struct {
	runtime      ports.ContainerRuntime
	graceTimeout time.Duration
	verifyDelay  time.Duration
}

// New creates an Actuator. graceTimeout bounds how long a restart/stop may
// take before the runtime call itself times out; verifyDelay is how long to
// wait after the call before re-reading state to confirm the action stuck.
func New(runtime ports.ContainerRuntime, graceTimeout, verifyDelay time.Duration) *Actuator {
	return &Actuator{runtime: runtime, graceTimeout: graceTimeout, verifyDelay: verifyDelay}
}

// Execute performs the action named by act.ActionType against act.Target,
// filling in Success/ErrorMessage/ExecutionTimeMs on the returned copy.
func (a *Actuator) Execute(ctx context.Context, act domain.RemediationAction) domain.RemediationAction {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.graceTimeout)
	defer cancel()

	// start/stop on a container already in the desired state succeed
	// without issuing a runtime call.
	if act.ActionType == domain.ActionStartReplica || act.ActionType == domain.ActionStopReplica {
		want := ports.ContainerRunning
		if act.ActionType == domain.ActionStopReplica {
			want = ports.ContainerExited
		}
		if state, err := a.runtime.Status(ctx, act.Target); err == nil && state == want {
			act.ExecutionTimeMs = time.Since(start).Milliseconds()
			act.Success = true
			return act
		}
	}

	err := a.dispatch(ctx, act)
	act.ExecutionTimeMs = time.Since(start).Milliseconds()

	if err != nil {
		act.Success = false
		act.ErrorMessage = err.Error()
		return act
	}

	if err := a.verify(ctx, act); err != nil {
		act.Success = false
		act.ErrorMessage = err.Error()
		return act
	}

	act.Success = true
	return act
}

func (a *Actuator) dispatch(ctx context.Context, act domain.RemediationAction) error {
	timeoutSec := int(a.graceTimeout.Seconds())
	switch act.ActionType {
	case domain.ActionRestartContainer:
		return a.runtime.Restart(ctx, act.Target, timeoutSec)
	case domain.ActionStartReplica:
		return a.runtime.Start(ctx, act.Target)
	case domain.ActionStopReplica:
		return a.runtime.Stop(ctx, act.Target, timeoutSec)
	case domain.ActionScaleReplicas:
		// Scaling is expressed as starting the named replica target; the
		// desired count lives in act.ScaleReplicas for the caller/adapter
		// that provisioned the replica target names.
		return a.runtime.Start(ctx, act.Target)
	default:
		return fmt.Errorf("unknown action type %q", act.ActionType)
	}
}

// verify re-reads container state after verifyDelay and confirms it
// matches what the action intended; a mismatch surfaces as
// errs.ErrPostStateMismatch per §7.
func (a *Actuator) verify(ctx context.Context, act domain.RemediationAction) error {
	select {
	case <-ctx.Done():
		return errs.ErrActuatorTimeout
	case <-time.After(a.verifyDelay):
	}

	state, err := a.runtime.Status(ctx, act.Target)
	if err != nil {
		return fmt.Errorf("verify status: %w", errs.ErrRuntimeUnavailable)
	}

	var want ports.ContainerState
	switch act.ActionType {
	case domain.ActionRestartContainer, domain.ActionStartReplica, domain.ActionScaleReplicas:
		want = ports.ContainerRunning
	case domain.ActionStopReplica:
		want = ports.ContainerExited
	default:
		return nil
	}

	if state != want {
		return fmt.Errorf("expected state %q, got %q: %w", want, state, errs.ErrPostStateMismatch)
	}
	return nil
}
