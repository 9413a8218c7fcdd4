package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewLoggerDoesNotPanic(t *testing.T) {
	log := NewLogger("test-service", "debug")
	log.Info("hello", String("key", "value"))
	assert.NoError(t, log.Sync())
}

func TestMetricsIncCounterAndGather(t *testing.T) {
	m := NewMetrics()
	m.IncCounter("incidents_detected_total", prometheus.Labels{"type": "cpu_spike", "severity": "WARNING"})

	families, err := m.Registry().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestHealthCheckerAggregatesUnhealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("db", func(ctx context.Context) HealthCheckResult {
		return HealthCheckResult{Status: "unhealthy", Message: "down"}
	})

	status := hc.CheckHealth(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
}
