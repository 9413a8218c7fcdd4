package actuator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/adapters/containerruntime"
	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/ports"
)

func TestExecuteRestartSucceedsWhenRunning(t *testing.T) {
	fake := containerruntime.NewFake()
	fake.Seed("svc", ports.ContainerExited)

	a := New(fake, time.Second, time.Millisecond)
	act, err := domain.NewAction(1, domain.ActionRestartContainer, "svc", domain.TriggeredByBot, time.Now())
	require.NoError(t, err)

	result := a.Execute(context.Background(), act)
	assert.True(t, result.Success)
	assert.Empty(t, result.ErrorMessage)
}

func TestExecuteFailsOnUnknownTarget(t *testing.T) {
	fake := containerruntime.NewFake()
	a := New(fake, time.Second, time.Millisecond)
	act, err := domain.NewAction(1, domain.ActionRestartContainer, "missing", domain.TriggeredByBot, time.Now())
	require.NoError(t, err)

	result := a.Execute(context.Background(), act)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestExecuteStopVerifiesExitedState(t *testing.T) {
	fake := containerruntime.NewFake()
	fake.Seed("svc", ports.ContainerRunning)

	a := New(fake, time.Second, time.Millisecond)
	act, err := domain.NewAction(1, domain.ActionStopReplica, "svc", domain.TriggeredByBot, time.Now())
	require.NoError(t, err)

	result := a.Execute(context.Background(), act)
	assert.True(t, result.Success)
}
