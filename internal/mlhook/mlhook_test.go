package mlhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarika-03/controlplane/internal/domain"
)

type stubScorer struct {
	result AnomalyResult
	err    error
}

func (s stubScorer) Score(ctx context.Context, snapshot domain.Snapshot) (AnomalyResult, error) {
	return s.result, s.err
}

type stubPredictor struct {
	result PredictionResult
	err    error
}

func (s stubPredictor) Predict(ctx context.Context, history []domain.Snapshot) (PredictionResult, error) {
	return s.result, s.err
}

func TestRunAnomalyScorerAbstainsBelowThreshold(t *testing.T) {
	scorer := stubScorer{result: AnomalyResult{IsAnomaly: true, Severity: 50}}
	_, ok := RunAnomalyScorer(context.Background(), scorer, domain.Snapshot{Service: "svc"}, 70, time.Now())
	assert.False(t, ok)
}

func TestRunAnomalyScorerFiresWarningAtThreshold(t *testing.T) {
	scorer := stubScorer{result: AnomalyResult{IsAnomaly: true, Severity: 75, ContributingFeatures: map[string]float64{
		"cpu": 0.9, "mem": 0.5, "latency": 0.3, "errors": 0.1,
	}}}
	inc, ok := RunAnomalyScorer(context.Background(), scorer, domain.Snapshot{Service: "svc"}, 70, time.Now())
	require.True(t, ok)
	assert.Equal(t, domain.SeverityWarning, inc.Severity)
	features := inc.Details["top_contributing_features"].([]string)
	assert.Len(t, features, 3)
	assert.Equal(t, "cpu", features[0])
}

func TestRunAnomalyScorerFiresCriticalAboveEightyFive(t *testing.T) {
	scorer := stubScorer{result: AnomalyResult{IsAnomaly: true, Severity: 90}}
	inc, ok := RunAnomalyScorer(context.Background(), scorer, domain.Snapshot{Service: "svc"}, 70, time.Now())
	require.True(t, ok)
	assert.Equal(t, domain.SeverityCritical, inc.Severity)
}

func TestRunAnomalyScorerAbstainsOnError(t *testing.T) {
	scorer := stubScorer{err: errors.New("model unavailable")}
	_, ok := RunAnomalyScorer(context.Background(), scorer, domain.Snapshot{Service: "svc"}, 70, time.Now())
	assert.False(t, ok)
}

func TestRunFailurePredictorAbstainsBelowMediumRisk(t *testing.T) {
	predictor := stubPredictor{result: PredictionResult{RiskLevel: domain.RiskLow}}
	_, _, ok := RunFailurePredictor(context.Background(), predictor, []domain.Snapshot{{}}, "svc", time.Now())
	assert.False(t, ok)
}

func TestRunFailurePredictorFiresCriticalOnHighRisk(t *testing.T) {
	predictor := stubPredictor{result: PredictionResult{RiskLevel: domain.RiskHigh, Probability: 0.8}}
	inc, risk, ok := RunFailurePredictor(context.Background(), predictor, []domain.Snapshot{{}}, "svc", time.Now())
	require.True(t, ok)
	assert.Equal(t, domain.RiskHigh, risk)
	assert.Equal(t, domain.SeverityCritical, inc.Severity)
	assert.Equal(t, domain.IncidentPredictedFailure, inc.Type)
}

func TestRunFailurePredictorAbstainsOnEmptyHistory(t *testing.T) {
	predictor := stubPredictor{result: PredictionResult{RiskLevel: domain.RiskHigh}}
	_, _, ok := RunFailurePredictor(context.Background(), predictor, nil, "svc", time.Now())
	assert.False(t, ok)
}
