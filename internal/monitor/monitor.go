// Package monitor implements the control loop (C8): on every tick, probe
// the target, run the detector chain, deduplicate, gate through the
// breaker, act, persist, and notify. It is the only package that wires
// every other component together. Per spec §5, there is exactly one
// goroutine driving all of this: threshold refresh, the ML failure-risk
// check, and the retention sweep are all interleaved into tick() by their
// own time checks rather than given independent tickers.
package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarika-03/controlplane/internal/actuator"
	"github.com/sarika-03/controlplane/internal/breaker"
	"github.com/sarika-03/controlplane/internal/cleanup"
	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/dedup"
	"github.com/sarika-03/controlplane/internal/detector"
	"github.com/sarika-03/controlplane/internal/domain"
	"github.com/sarika-03/controlplane/internal/mlhook"
	"github.com/sarika-03/controlplane/internal/notify"
	"github.com/sarika-03/controlplane/internal/observability"
	"github.com/sarika-03/controlplane/internal/ports"
	"github.com/sarika-03/controlplane/internal/probe"
	"github.com/sarika-03/controlplane/internal/strategy"
)

// riskAlertThrottle is how long a repeat prediction at the same risk level
// is suppressed, per §4.8 step 3 ("not alerted within the last 10 minutes
// for the same risk level"), grounded on original_source/bot/bot.py's
// 600-second incident_key throttle.
const riskAlertThrottle = 10 * time.Minute

// defaultPredictionInterval is used when Config.PredictionInterval is unset,
// grounded on original_source/bot/bot.py's FAILURE_CHECK_INTERVAL default
// of 300 seconds.
const defaultPredictionInterval = 5 * time.Minute

// Config bundles the tunables the monitor loop needs beyond its
// collaborators.
type Config struct {
	Target                string
	PollInterval          time.Duration
	ThresholdRefreshTicks int
	HistoryDepth          int
	PredictionInterval    time.Duration
}

// Loop runs the per-target monitor cycle on a fixed cadence.
type Loop struct {
	cfg Config

	prober    probe.Prober
	chain     *detector.Chain
	dedup     *dedup.Deduplicator
	breaker   *breaker.Breaker
	strategy  *strategy.Strategy
	actuator  *actuator.Actuator
	store     ports.Store
	emitter   *notify.Emitter
	scorer    mlhook.AnomalyScorer
	predictor mlhook.FailurePredictor
	sweeper   *cleanup.Sweeper

	clk     clock.Clock
	log     observability.Logger
	metrics observability.Metrics

	thresholds            domain.ThresholdConfig
	history               []domain.Snapshot
	tickCount             int
	lastPredictionCheckAt time.Time
	lastRiskAlertAt       map[domain.RiskLevel]time.Time
}

// New builds a Loop. scorer/predictor/sweeper may be nil to skip the
// optional ML detection paths and the retention sweep respectively.
func New(
	cfg Config,
	prober probe.Prober,
	chain *detector.Chain,
	d *dedup.Deduplicator,
	b *breaker.Breaker,
	s *strategy.Strategy,
	a *actuator.Actuator,
	store ports.Store,
	emitter *notify.Emitter,
	scorer mlhook.AnomalyScorer,
	predictor mlhook.FailurePredictor,
	sweeper *cleanup.Sweeper,
	clk clock.Clock,
	log observability.Logger,
	metrics observability.Metrics,
) *Loop {
	return &Loop{
		cfg:             cfg,
		prober:          prober,
		chain:           chain,
		dedup:           d,
		breaker:         b,
		strategy:        s,
		actuator:        a,
		store:           store,
		emitter:         emitter,
		scorer:          scorer,
		predictor:       predictor,
		sweeper:         sweeper,
		clk:             clk,
		log:             log,
		metrics:         metrics,
		thresholds:      domain.DefaultThresholds(),
		lastRiskAlertAt: make(map[domain.RiskLevel]time.Time),
	}
}

// Run blocks, ticking every cfg.PollInterval until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clk.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	start := l.clk.Now()
	defer func() {
		if l.metrics != nil {
			l.metrics.ObserveDuration("tick_duration_seconds", l.clk.Now().Sub(start), nil)
		}
	}()

	l.tickCount++
	if l.tickCount%l.refreshTicks() == 0 {
		l.refreshPolicy(ctx)
	}

	snapshot, category, err := l.prober.Probe(ctx)
	if err != nil {
		l.handleIncident(ctx, detector.NewHealthCheckIncident(l.cfg.Target, category, l.clk.Now()))
		return
	}

	l.recordHistory(*snapshot)

	for _, inc := range l.chain.Run(*snapshot, l.thresholds, l.clk.Now()) {
		l.handleIncident(ctx, inc)
	}

	if inc, ok := mlhook.RunAnomalyScorer(ctx, l.scorer, *snapshot, l.thresholds.MLAnomalySeverityThreshold, l.clk.Now()); ok {
		l.handleIncident(ctx, inc)
	}

	l.maybeCheckFailurePrediction(ctx)

	if l.sweeper != nil {
		l.sweeper.MaybeRun(ctx)
	}
}

func (l *Loop) refreshTicks() int {
	if l.cfg.ThresholdRefreshTicks <= 0 {
		return 1
	}
	return l.cfg.ThresholdRefreshTicks
}

func (l *Loop) refreshPolicy(ctx context.Context) {
	if thresholds, err := l.store.ReadThresholds(ctx); err == nil {
		l.thresholds = thresholds
	}
}

func (l *Loop) recordHistory(s domain.Snapshot) {
	depth := l.cfg.HistoryDepth
	if depth <= 0 {
		depth = 20
	}
	l.history = append(l.history, s)
	if len(l.history) > depth {
		l.history = l.history[len(l.history)-depth:]
	}
}

// maybeCheckFailurePrediction runs the failure predictor at most once per
// PredictionInterval and, per §4.8 step 3, further suppresses a positive
// prediction if the same risk level already alerted within the last 10
// minutes. Both throttles are cross-tick state the predictor itself cannot
// own, since mlhook.RunFailurePredictor is a stateless, single-call gate.
func (l *Loop) maybeCheckFailurePrediction(ctx context.Context) {
	now := l.clk.Now()
	interval := l.cfg.PredictionInterval
	if interval <= 0 {
		interval = defaultPredictionInterval
	}
	if !l.lastPredictionCheckAt.IsZero() && now.Sub(l.lastPredictionCheckAt) < interval {
		return
	}
	l.lastPredictionCheckAt = now

	inc, risk, ok := mlhook.RunFailurePredictor(ctx, l.predictor, l.history, l.cfg.Target, now)
	if !ok {
		return
	}
	if last, seen := l.lastRiskAlertAt[risk]; seen && now.Sub(last) < riskAlertThrottle {
		return
	}
	l.lastRiskAlertAt[risk] = now
	l.handleIncident(ctx, inc)
}

// handleIncident runs the dedup -> persist -> decide -> gate -> act ->
// persist pipeline for a single detected incident, per §4.8 step 7.
// predicted_failure is notify-only (§4.4, §4.8 step 3): it is persisted and
// announced but never reaches strategy.Select, breaker.Allow, or
// actuator.Execute.
func (l *Loop) handleIncident(ctx context.Context, inc domain.Incident) {
	if l.dedup.Observe(inc.AffectedService, inc.Type) {
		return
	}

	if l.metrics != nil {
		l.metrics.IncCounter("incidents_detected_total", prometheus.Labels{
			"type": string(inc.Type), "severity": string(inc.Severity),
		})
	}

	incidentID, err := l.store.LogIncident(ctx, inc)
	if err != nil {
		l.log.Error("failed to log incident", observability.Error(err))
		return
	}

	target := inc.AffectedService

	if inc.Type == domain.IncidentPredictedFailure {
		l.emitter.Emit(notify.NewNotification(notify.SeverityWarning,
			"predicted failure (advisory)",
			"ML failure prediction for "+target+"; notify-only, no automatic action taken", target))
		return
	}

	actionType, ok := l.strategy.Select(ctx, inc, target)
	if !ok {
		return
	}

	if !l.breaker.Allow(target) {
		if l.metrics != nil {
			l.metrics.IncCounter("breaker_blocks_total", prometheus.Labels{"target": target})
		}
		if err := l.store.EscalateIncident(ctx, incidentID, "circuit breaker open"); err != nil {
			l.log.Error("failed to escalate incident", observability.Error(err))
		}
		l.emitter.Emit(notify.NewNotification(notify.SeverityWarning,
			"remediation blocked by circuit breaker", string(inc.Type)+" on "+target, target))
		return
	}

	action, err := domain.NewAction(incidentID, actionType, target, domain.TriggeredByBot, l.clk.Now())
	if err != nil {
		l.log.Error("failed to build action", observability.Error(err))
		return
	}
	if actionType == domain.ActionScaleReplicas {
		action.ScaleReplicas = 1
	}

	l.emitter.Emit(notify.NewNotification(notify.SeverityInfo,
		"remediation starting", string(actionType)+" on "+target, target))

	result := l.actuator.Execute(ctx, action)
	l.breaker.RecordAttempt(target, result.Success)

	if l.metrics != nil {
		l.metrics.IncCounter("actions_executed_total", prometheus.Labels{
			"action_type": string(actionType), "success": boolLabel(result.Success),
		})
	}

	if _, err := l.store.LogAction(ctx, result); err != nil {
		l.log.Error("failed to log action", observability.Error(err))
	}

	if result.Success {
		if err := l.store.ResolveIncident(ctx, incidentID, l.clk.Now()); err != nil {
			l.log.Warn("failed to resolve incident", observability.Error(err))
		}
		l.emitter.Emit(notify.NewNotification(notify.SeveritySuccess,
			"remediation succeeded", string(actionType)+" on "+target, target))
	} else {
		if err := l.store.EscalateIncident(ctx, incidentID, result.ErrorMessage); err != nil {
			l.log.Error("failed to escalate incident", observability.Error(err))
		}
		l.emitter.Emit(notify.NewNotification(notify.SeverityCritical,
			"remediation failed", result.ErrorMessage, target))
	}
}

// ReconcileOrphans resolves ACTIVE incidents left behind by a previous
// process that crashed or restarted after remediation succeeded but before
// the incident was marked resolved. A target is considered reconciled when
// the runtime reports it running; anything else is left ACTIVE for the
// monitor loop to pick back up on its own cadence. Off by default
// (RECONCILE_ON_STARTUP), since silently resolving an incident nobody
// verified is a judgment call an operator may want to opt into rather than
// have forced on them.
func ReconcileOrphans(ctx context.Context, store ports.Store, runtime ports.ContainerRuntime, clk clock.Clock, log observability.Logger) {
	active, err := store.ListActiveIncidents(ctx)
	if err != nil {
		log.Error("failed to list active incidents for reconciliation", observability.Error(err))
		return
	}

	for _, inc := range active {
		state, err := runtime.Status(ctx, inc.AffectedService)
		if err != nil || state != ports.ContainerRunning {
			continue
		}
		if err := store.ResolveIncident(ctx, inc.ID, clk.Now()); err != nil {
			log.Warn("failed to reconcile orphaned incident", observability.Int64("incident_id", inc.ID), observability.Error(err))
			continue
		}
		log.Info("reconciled orphaned incident on startup", observability.Int64("incident_id", inc.ID), observability.String("service", inc.AffectedService))
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
