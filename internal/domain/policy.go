package domain

import "time"

// ThresholdConfig holds the breach thresholds read from the config table
// (key "thresholds"). Missing keys fall back to DefaultThresholds.
type ThresholdConfig struct {
	ErrorRate      float64 `json:"errorRate"`
	CPUPercent     float64 `json:"cpuPercent"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
	// MLAnomalySeverityThreshold gates RunAnomalyScorer: a scorer result only
	// becomes an incident when its 0..100 severity is at or above this value.
	MLAnomalySeverityThreshold float64 `json:"mlAnomalySeverityThreshold"`
}

// DefaultThresholds returns the built-in defaults from §3.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		ErrorRate:                  0.2,
		CPUPercent:                 80,
		ResponseTimeMs:             500,
		MLAnomalySeverityThreshold: 70,
	}
}

// RiskLevel is a FailurePredictor's coarse risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AtLeastMedium reports whether the risk level meets the "risk >= medium"
// bar spec §4.8 step 3 requires before a predicted_failure incident is
// even considered.
func (r RiskLevel) AtLeastMedium() bool {
	return r == RiskMedium || r == RiskHigh
}

// BreakerConfig holds circuit-breaker tuning read from the config table
// (key "circuit_breaker").
type BreakerConfig struct {
	MaxFailures int           `json:"maxFailures"`
	WindowSec   int           `json:"windowSec"`
	CooldownSec int           `json:"cooldownSec"`
}

// DefaultBreakerConfig returns the built-in defaults from §3.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 3,
		WindowSec:   300,
		CooldownSec: 120,
	}
}

// Window returns WindowSec as a time.Duration.
func (b BreakerConfig) Window() time.Duration {
	return time.Duration(b.WindowSec) * time.Second
}

// Cooldown returns CooldownSec as a time.Duration.
func (b BreakerConfig) Cooldown() time.Duration {
	return time.Duration(b.CooldownSec) * time.Second
}
