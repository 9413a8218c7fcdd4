package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/observability"
	"github.com/sarika-03/controlplane/internal/storage/memory"
)

func TestMaybeRunSweepsOnFirstCallRegardlessOfInterval(t *testing.T) {
	store := memory.New()
	fc := clock.NewFake(time.Now())
	log := observability.NewLogger("test", "error")

	_, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, fc.Now().Add(-1000*time.Hour)))
	require.NoError(t, err)

	s := New(store, fc, log, time.Hour, time.Minute)
	s.MaybeRun(context.Background())

	assert.Empty(t, store.Incidents())
}

func TestMaybeRunSkipsBeforeIntervalElapses(t *testing.T) {
	store := memory.New()
	fc := clock.NewFake(time.Now())
	log := observability.NewLogger("test", "error")

	s := New(store, fc, log, time.Hour, time.Minute)
	s.MaybeRun(context.Background())

	_, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, fc.Now().Add(-1000*time.Hour)))
	require.NoError(t, err)

	fc.Advance(time.Minute)
	s.MaybeRun(context.Background())

	assert.Len(t, store.Incidents(), 1, "sweep should not have run again before the interval elapsed")
}

func TestMaybeRunSweepsAgainAfterIntervalElapses(t *testing.T) {
	store := memory.New()
	fc := clock.NewFake(time.Now())
	log := observability.NewLogger("test", "error")

	s := New(store, fc, log, time.Hour, time.Minute)
	s.MaybeRun(context.Background())

	_, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, fc.Now().Add(-1000*time.Hour)))
	require.NoError(t, err)

	fc.Advance(2 * time.Hour)
	s.MaybeRun(context.Background())

	assert.Empty(t, store.Incidents())
}
