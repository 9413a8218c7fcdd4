// Package probe implements the bounded-time health fetch (C1). It never
// retries — the monitor loop's tick cadence supplies retry semantics — and
// it never treats a failure as an incident itself; the monitor loop turns a
// failure into an incident via detector.NewHealthCheckIncident.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
)

// Prober fetches a Snapshot from the monitored service.
type Prober interface {
	Probe(ctx context.Context) (*domain.Snapshot, domain.ProbeFailureCategory, error)
}

// wireResponse mirrors the monitored-service health contract from §6
// exactly, snake_case field names included.
type wireResponse struct {
	Service       string  `json:"service"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	Metrics       struct {
		ErrorRate        float64  `json:"error_rate"`
		CPUUsagePercent  float64  `json:"cpu_usage_percent"`
		MemoryUsageMB    float64  `json:"memory_usage_mb"`
		ResponseP50Ms    *float64 `json:"response_time_p50_ms"`
		ResponseP95Ms    *float64 `json:"response_time_p95_ms"`
		ResponseP99Ms    *float64 `json:"response_time_p99_ms"`
		TotalRequests    int64    `json:"total_requests"`
		TotalErrors      int64    `json:"total_errors"`
	} `json:"metrics"`
	Flags struct {
		CPUSpike   bool `json:"cpu_spike"`
		ErrorSpike bool `json:"error_spike"`
	} `json:"flags"`
}

// HTTPProber implements Prober against a JSON HTTP health endpoint.
type HTTPProber struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPProber creates a Prober with the given bounded-time deadline
// (§4.1 specifies ≤3s).
func NewHTTPProber(baseURL string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Probe performs a single bounded-time GET against the health endpoint.
func (p *HTTPProber) Probe(ctx context.Context) (*domain.Snapshot, domain.ProbeFailureCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return nil, domain.ProbeOther, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		category := domain.ProbeOther
		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
			category = domain.ProbeTimeout
		case isConnectionRefused(err):
			category = domain.ProbeConnectionRefused
		}
		return nil, category, fmt.Errorf("health probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ProbeHTTPStatus(resp.StatusCode), fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ProbeMalformedBody, fmt.Errorf("failed to read health response: %w", err)
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, domain.ProbeMalformedBody, fmt.Errorf("failed to parse health response: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, wire.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	snapshot := &domain.Snapshot{
		Service:   wire.Service,
		Timestamp: ts,
		Metrics: domain.Metrics{
			ErrorRate:     wire.Metrics.ErrorRate,
			CPUPercent:    wire.Metrics.CPUUsagePercent,
			MemoryMB:      wire.Metrics.MemoryUsageMB,
			P50Ms:         wire.Metrics.ResponseP50Ms,
			P95Ms:         wire.Metrics.ResponseP95Ms,
			P99Ms:         wire.Metrics.ResponseP99Ms,
			TotalRequests: wire.Metrics.TotalRequests,
			TotalErrors:   wire.Metrics.TotalErrors,
			UptimeSec:     wire.UptimeSeconds,
		},
		Flags: domain.Flags{
			CPUSpike:   wire.Flags.CPUSpike,
			ErrorSpike: wire.Flags.ErrorSpike,
		},
	}

	return snapshot, "", nil
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
