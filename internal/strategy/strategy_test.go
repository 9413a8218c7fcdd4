package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/domain"
)

type fakeChecker struct{ has bool }

func (f fakeChecker) HasReplica(ctx context.Context, target string) bool { return f.has }

func incidentOf(typ domain.IncidentType, sev domain.Severity) domain.Incident {
	return domain.Incident{Type: typ, Severity: sev}
}

func TestSelectRestartsWhenNoReplica(t *testing.T) {
	s := New(fakeChecker{has: false})
	got, ok := s.Select(context.Background(), incidentOf(domain.IncidentHighErrorRate, domain.SeverityWarning), "svc")
	require.True(t, ok)
	assert.Equal(t, domain.ActionRestartContainer, got)
}

func TestSelectScalesWhenReplicaExists(t *testing.T) {
	s := New(fakeChecker{has: true})
	got, ok := s.Select(context.Background(), incidentOf(domain.IncidentCPUSpike, domain.SeverityWarning), "svc")
	require.True(t, ok)
	assert.Equal(t, domain.ActionScaleReplicas, got)
}

func TestSelectNilCheckerDefaultsToRestart(t *testing.T) {
	s := New(nil)
	got, ok := s.Select(context.Background(), incidentOf(domain.IncidentHealthCheckFailed, domain.SeverityCritical), "svc")
	require.True(t, ok)
	assert.Equal(t, domain.ActionRestartContainer, got)
}

func TestSelectMLAnomalyCriticalRestarts(t *testing.T) {
	s := New(nil)
	got, ok := s.Select(context.Background(), incidentOf(domain.IncidentMLAnomaly, domain.SeverityCritical), "svc")
	require.True(t, ok)
	assert.Equal(t, domain.ActionRestartContainer, got)
}

func TestSelectMLAnomalyNonCriticalHasNoMapping(t *testing.T) {
	s := New(nil)
	_, ok := s.Select(context.Background(), incidentOf(domain.IncidentMLAnomaly, domain.SeverityWarning), "svc")
	assert.False(t, ok)
}

func TestSelectPredictedFailureHasNoMapping(t *testing.T) {
	s := New(nil)
	_, ok := s.Select(context.Background(), incidentOf(domain.IncidentPredictedFailure, domain.SeverityCritical), "svc")
	assert.False(t, ok)
}
