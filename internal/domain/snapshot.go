package domain

import (
	"strconv"
	"time"
)

// Metrics holds the numeric health signals pulled from the monitored service.
// Percentile fields are pointers because the upstream contract allows them
// to be absent (null) entirely, which is distinct from a zero value.
type Metrics struct {
	ErrorRate     float64
	CPUPercent    float64
	MemoryMB      float64
	P50Ms         *float64
	P95Ms         *float64
	P99Ms         *float64
	TotalRequests int64
	TotalErrors   int64
	UptimeSec     int64
}

// Flags carries upstream-computed spike indicators that bypass threshold math.
type Flags struct {
	CPUSpike   bool
	ErrorSpike bool
}

// Snapshot is a single point-in-time read of the monitored service's health.
// It is transient: nothing in the system persists a Snapshot directly.
type Snapshot struct {
	Service   string
	Timestamp time.Time
	Metrics   Metrics
	Flags     Flags
}

// ProbeFailureCategory classifies why a Snapshot could not be obtained.
type ProbeFailureCategory string

const (
	ProbeConnectionRefused ProbeFailureCategory = "connection_refused"
	ProbeTimeout           ProbeFailureCategory = "timeout"
	ProbeMalformedBody     ProbeFailureCategory = "malformed_body"
	ProbeOther             ProbeFailureCategory = "other"
)

// ProbeHTTPStatus builds the http_<code> category used when the health
// endpoint answers with a non-200 status.
func ProbeHTTPStatus(code int) ProbeFailureCategory {
	return ProbeFailureCategory("http_" + strconv.Itoa(code))
}
