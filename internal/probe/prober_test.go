package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/domain"
)

func TestProbeParsesHealthyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"service": "api",
			"timestamp": "2026-01-01T00:00:00Z",
			"uptime_seconds": 120,
			"metrics": {"error_rate": 0.1, "cpu_usage_percent": 50, "memory_usage_mb": 256, "total_requests": 10, "total_errors": 1},
			"flags": {"cpu_spike": false, "error_spike": false}
		}`))
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, time.Second)
	snapshot, _, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "api", snapshot.Service)
	assert.Equal(t, 0.1, snapshot.Metrics.ErrorRate)
}

func TestProbeReturnsHTTPStatusCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, time.Second)
	_, category, err := p.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ProbeHTTPStatus(http.StatusServiceUnavailable), category)
}

func TestProbeReturnsMalformedBodyCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, time.Second)
	_, category, err := p.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ProbeMalformedBody, category)
}

func TestProbeReturnsTimeoutCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, 5*time.Millisecond)
	_, category, err := p.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ProbeTimeout, category)
}
