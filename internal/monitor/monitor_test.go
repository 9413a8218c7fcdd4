package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/actuator"
	"github.com/sarika-03/controlplane/internal/adapters/containerruntime"
	"github.com/sarika-03/controlplane/internal/breaker"
	"github.com/sarika-03/controlplane/internal/cleanup"
	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/dedup"
	"github.com/sarika-03/controlplane/internal/detector"
	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/notify"
	"github.com/sarika-03/controlplane/internal/observability"
	"github.com/sarika-03/controlplane/internal/ports"
	"github.com/sarika-03/controlplane/internal/storage/memory"
	"github.com/sarika-03/controlplane/internal/strategy"
)

type stubProber struct {
	snapshot domain.Snapshot
	err      error
	category domain.ProbeFailureCategory
}

func (s stubProber) Probe(ctx context.Context) (*domain.Snapshot, domain.ProbeFailureCategory, error) {
	if s.err != nil {
		return nil, s.category, s.err
	}
	snap := s.snapshot
	return &snap, "", nil
}

func newTestLoop(t *testing.T, target string, prober stubProber) (*Loop, *memory.Store, *containerruntime.Fake) {
	t.Helper()
	store := memory.New()
	fake := containerruntime.NewFake()

	fc := clock.NewFake(time.Now())
	chain := detector.NewChain(detector.DefaultDetectors()...)
	deduper := dedup.New(5*time.Minute, fc)
	brk := breaker.New(domain.BreakerConfig{MaxFailures: 3, WindowSec: 300, CooldownSec: 120}, fc)
	strat := strategy.New(nil)
	act := actuator.New(fake, time.Second, time.Millisecond)
	emitter := notify.NewEmitter(notify.NewConsoleSender(observability.NewLogger("test", "error")), observability.NewLogger("test", "error"), observability.NoOpMetrics{}, 16)

	loop := New(
		Config{Target: target, PollInterval: time.Second, ThresholdRefreshTicks: 100, HistoryDepth: 10},
		prober, chain, deduper, brk, strat, act, store, emitter,
		nil, nil, nil,
		fc, observability.NewLogger("test", "error"), observability.NoOpMetrics{},
	)
	return loop, store, fake
}

func TestTickResolvesIncidentOnSuccessfulRemediation(t *testing.T) {
	snap := domain.Snapshot{Service: "svc", Metrics: domain.Metrics{ErrorRate: 0.9, CPUPercent: 10}}
	loop, store, fake := newTestLoop(t, "svc", stubProber{snapshot: snap})
	fake.Seed("svc", ports.ContainerExited)

	loop.tick(context.Background())

	incidents := store.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.StatusResolved, incidents[0].Status)
}

func TestTickEscalatesOnProbeFailureWithNoContainer(t *testing.T) {
	loop, store, _ := newTestLoop(t, "missing-target", stubProber{err: assertError{}, category: domain.ProbeConnectionRefused})

	loop.tick(context.Background())

	incidents := store.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.IncidentHealthCheckFailed, incidents[0].Type)
	assert.Equal(t, domain.StatusEscalated, incidents[0].Status)
}

func TestTickDeduplicatesRepeatedIncidents(t *testing.T) {
	snap := domain.Snapshot{Service: "svc", Metrics: domain.Metrics{ErrorRate: 0.9, CPUPercent: 10}}
	loop, store, _ := newTestLoop(t, "svc", stubProber{snapshot: snap})

	loop.tick(context.Background())
	loop.tick(context.Background())

	assert.Len(t, store.Incidents(), 1)
}

type assertError struct{}

func (assertError) Error() string { return "probe failed" }

type captureSender struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (c *captureSender) Send(ctx context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
	return nil
}

func (c *captureSender) titles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.got))
	for i, n := range c.got {
		out[i] = n.Title
	}
	return out
}

func TestHandleIncidentPredictedFailureNeverGatesOrActs(t *testing.T) {
	loop, store, fake := newTestLoop(t, "svc", stubProber{})
	fake.Seed("svc", ports.ContainerExited)
	sender := &captureSender{}
	loop.emitter = notify.NewEmitter(sender, observability.NewLogger("test", "error"), observability.NoOpMetrics{}, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.emitter.Start(ctx)

	inc := domain.NewIncident(domain.IncidentPredictedFailure, domain.SeverityWarning, "svc", nil, loop.clk.Now())
	loop.handleIncident(context.Background(), inc)
	require.Eventually(t, func() bool { return len(sender.titles()) >= 1 }, time.Second, time.Millisecond)

	incidents := store.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.StatusActive, incidents[0].Status, "predicted_failure must never be gated or acted on")
	assert.Contains(t, sender.titles(), "predicted failure (advisory)")
}

func TestHandleIncidentNonCriticalMLAnomalyHasNoMapping(t *testing.T) {
	loop, store, _ := newTestLoop(t, "svc", stubProber{})

	inc := domain.NewIncident(domain.IncidentMLAnomaly, domain.SeverityWarning, "svc", nil, loop.clk.Now())
	loop.handleIncident(context.Background(), inc)

	incidents := store.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.StatusActive, incidents[0].Status)
}

func TestHandleIncidentEmitsStartingAndSuccessNotifications(t *testing.T) {
	loop, store, fake := newTestLoop(t, "svc", stubProber{})
	fake.Seed("svc", ports.ContainerExited)
	sender := &captureSender{}
	loop.emitter = notify.NewEmitter(sender, observability.NewLogger("test", "error"), observability.NoOpMetrics{}, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.emitter.Start(ctx)

	inc := domain.NewIncident(domain.IncidentHighErrorRate, domain.SeverityCritical, "svc", nil, loop.clk.Now())
	loop.handleIncident(context.Background(), inc)
	require.Eventually(t, func() bool { return len(sender.titles()) >= 2 }, time.Second, time.Millisecond)

	incidents := store.Incidents()
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.StatusResolved, incidents[0].Status)
	assert.Contains(t, sender.titles(), "remediation starting")
	assert.Contains(t, sender.titles(), "remediation succeeded")
}

func TestTickFoldsCleanupSweepIntoSameGoroutine(t *testing.T) {
	snap := domain.Snapshot{Service: "svc", Metrics: domain.Metrics{ErrorRate: 0.01, CPUPercent: 1}}
	loop, store, _ := newTestLoop(t, "svc", stubProber{snapshot: snap})

	_, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, loop.clk.Now().Add(-1000*time.Hour)))
	require.NoError(t, err)

	loop.sweeper = cleanup.New(store, loop.clk, observability.NewLogger("test", "error"), time.Hour, time.Minute)
	loop.tick(context.Background())

	assert.Empty(t, store.Incidents(), "cleanup should have swept the stale incident on the same tick, with no dedicated goroutine")
}

func TestReconcileOrphansResolvesRunningTarget(t *testing.T) {
	store := memory.New()
	fake := containerruntime.NewFake()
	fake.Seed("svc", ports.ContainerRunning)
	fc := clock.NewFake(time.Now())
	log := observability.NewLogger("test", "error")

	id, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, fc.Now()))
	require.NoError(t, err)

	ReconcileOrphans(context.Background(), store, fake, fc, log)

	incidents, err := store.ListActiveIncidents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, incidents)

	require.ErrorIs(t, store.ResolveIncident(context.Background(), id, fc.Now()), domain.ErrAlreadyResolved)
}

func TestReconcileOrphansLeavesNonRunningTargetActive(t *testing.T) {
	store := memory.New()
	fake := containerruntime.NewFake()
	fake.Seed("svc", ports.ContainerExited)
	fc := clock.NewFake(time.Now())
	log := observability.NewLogger("test", "error")

	_, err := store.LogIncident(context.Background(), domain.NewIncident(domain.IncidentCPUSpike, domain.SeverityWarning, "svc", nil, fc.Now()))
	require.NoError(t, err)

	ReconcileOrphans(context.Background(), store, fake, fc, log)

	incidents, err := store.ListActiveIncidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, incidents, 1)
}
