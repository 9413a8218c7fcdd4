// Package mlhook defines the optional machine-learning extension points the
// spec invites but does not require an implementation of: anomaly scoring
// and failure prediction. Both are pure interfaces with a bounded deadline;
// the monitor loop runs them only when a concrete implementation is wired,
// and a timeout or error is treated as "no opinion", never as a fault.
package mlhook

import (
	"context"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
)

// CallTimeout bounds how long the monitor loop waits on a plugin.
const CallTimeout = 500 * time.Millisecond

// AnomalyResult is what an AnomalyScorer reports for one snapshot, mirroring
// §6's ML plug-in contract.
type AnomalyResult struct {
	IsAnomaly            bool
	Severity             float64 // 0..100
	ContributingFeatures map[string]float64
}

// AnomalyScorer scores a snapshot for anomalousness outside of simple
// threshold breaches.
type AnomalyScorer interface {
	Score(ctx context.Context, snapshot domain.Snapshot) (AnomalyResult, error)
}

// PredictionResult is what a FailurePredictor reports, mirroring §6's ML
// plug-in contract.
type PredictionResult struct {
	Probability float64
	RiskLevel   domain.RiskLevel
	TopFeatures []string
}

// FailurePredictor estimates the likelihood of imminent failure from
// recent snapshot history.
type FailurePredictor interface {
	Predict(ctx context.Context, history []domain.Snapshot) (PredictionResult, error)
}

// topFeatures returns up to n feature names ordered by descending weight,
// matching the original model's "top_3" contribution slicing.
func topFeatures(features map[string]float64, n int) []string {
	type kv struct {
		name   string
		weight float64
	}
	sorted := make([]kv, 0, len(features))
	for name, weight := range features {
		sorted = append(sorted, kv{name, weight})
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].weight > sorted[j-1].weight; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, len(sorted))
	for i, kv := range sorted {
		out[i] = kv.name
	}
	return out
}

// RunAnomalyScorer invokes scorer with CallTimeout and converts a
// sufficiently severe anomaly into an Incident. A nil scorer, a timeout, an
// error, a non-anomaly result, or a severity below severityThreshold all
// result in ok=false — severityThreshold is the config-driven
// ThresholdConfig.MLAnomalySeverityThreshold (default 70), not a fixed
// constant, since it is read from policy like the other thresholds.
func RunAnomalyScorer(ctx context.Context, scorer AnomalyScorer, snapshot domain.Snapshot, severityThreshold float64, now time.Time) (domain.Incident, bool) {
	if scorer == nil {
		return domain.Incident{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	result, err := scorer.Score(ctx, snapshot)
	if err != nil || !result.IsAnomaly || result.Severity < severityThreshold {
		return domain.Incident{}, false
	}

	sev := domain.SeverityWarning
	if result.Severity >= 85 {
		sev = domain.SeverityCritical
	}
	return domain.NewIncident(domain.IncidentMLAnomaly, sev, snapshot.Service, map[string]interface{}{
		"anomaly_severity":     result.Severity,
		"top_contributing_features": topFeatures(result.ContributingFeatures, 3),
	}, now), true
}

// RunFailurePredictor invokes predictor with CallTimeout and converts a
// risk >= medium prediction into an Incident. The "interval elapsed" and
// "not alerted within the last 10 minutes for this risk level" throttles
// from §4.8 step 3 are the monitor loop's responsibility (they span ticks);
// this function only applies the stateless risk-level gate.
func RunFailurePredictor(ctx context.Context, predictor FailurePredictor, history []domain.Snapshot, service string, now time.Time) (domain.Incident, domain.RiskLevel, bool) {
	if predictor == nil || len(history) == 0 {
		return domain.Incident{}, "", false
	}
	ctx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()

	result, err := predictor.Predict(ctx, history)
	if err != nil || !result.RiskLevel.AtLeastMedium() {
		return domain.Incident{}, "", false
	}

	sev := domain.SeverityWarning
	if result.RiskLevel == domain.RiskHigh {
		sev = domain.SeverityCritical
	}
	inc := domain.NewIncident(domain.IncidentPredictedFailure, sev, service, map[string]interface{}{
		"probability":  result.Probability,
		"risk_level":   string(result.RiskLevel),
		"top_features": result.TopFeatures,
	}, now)
	return inc, result.RiskLevel, true
}
