package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarika-03/controlplane/internal/actuator"
	"github.com/sarika-03/controlplane/internal/adapters/containerruntime"
	"github.com/sarika-03/controlplane/internal/breaker"
	"github.com/sarika-03/controlplane/internal/cleanup"
	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/config"
	"github.com/sarika-03/controlplane/internal/dedup"
	"github.com/sarika-03/controlplane/internal/detector"
	"github.com/sarika-03/controlplane/internal/monitor"
	"github.com/sarika-03/controlplane/internal/notify"
	"github.com/sarika-03/controlplane/internal/observability"
	"github.com/sarika-03/controlplane/internal/ports"
	"github.com/sarika-03/controlplane/internal/probe"
	"github.com/sarika-03/controlplane/internal/storage/memory"
	sqlstore "github.com/sarika-03/controlplane/internal/storage/sql"
	"github.com/sarika-03/controlplane/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Println("controlplane v1.0.0")
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Observability.ServiceName, cfg.Observability.LogLevel)
	defer log.Sync()

	var metrics observability.Metrics = observability.NoOpMetrics{}
	if cfg.Observability.EnableMetrics {
		metrics = observability.NewMetrics()
	}

	log.Info("starting control plane", observability.String("target", cfg.Monitor.PrimaryTarget))

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize store", observability.Error(err))
	}
	defer closeStore()

	runtime, err := containerruntime.NewDocker()
	if err != nil {
		log.Fatal("failed to initialize container runtime", observability.Error(err))
	}

	clk := clock.Real{}
	prober := probe.NewHTTPProber(cfg.Monitor.AppHost, cfg.Monitor.ProbeTimeout)
	chain := detector.NewChain(detector.DefaultDetectors()...)
	chain.SetLogger(log)
	deduper := dedup.New(time.Duration(cfg.Monitor.DedupWindowSeconds)*time.Second, clk)
	brk := breaker.New(cfg.Breaker.BreakerPolicy(), clk)
	strat := strategy.New(runtimeReplicaAdapter{runtime})
	act := actuator.New(runtime, cfg.Monitor.ActuatorGraceTimeout, cfg.Monitor.ActuatorVerifyDelay)

	var sender notify.Sender
	if cfg.Notification.SlackWebhookURL != "" {
		sender = notify.NewSlackSender(cfg.Notification.SlackWebhookURL, cfg.Notification.SendTimeout)
	} else {
		sender = notify.NewConsoleSender(log)
	}
	emitter := notify.NewEmitter(sender, log, metrics, cfg.Notification.QueueSize)

	sweeper := cleanup.New(store, clk, log,
		time.Duration(cfg.Monitor.CleanupIntervalHours)*time.Hour,
		time.Duration(cfg.Monitor.RetentionDays)*24*time.Hour,
	)

	loop := monitor.New(
		monitor.Config{
			Target:                cfg.Monitor.PrimaryTarget,
			PollInterval:          time.Duration(cfg.Monitor.PollSeconds) * time.Second,
			ThresholdRefreshTicks: cfg.Monitor.ThresholdRefreshTicks,
			HistoryDepth:          20,
			PredictionInterval:    time.Duration(cfg.Monitor.FailureCheckSeconds) * time.Second,
		},
		prober, chain, deduper, brk, strat, act, store, emitter,
		nil, nil, sweeper,
		clk, log, metrics,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Monitor.ReconcileOnStartup {
		monitor.ReconcileOrphans(ctx, store, runtime, clk, log)
	}

	go emitter.Start(ctx)
	go loop.Run(ctx)

	<-ctx.Done()
	log.Info("shutting down")
	emitter.Wait()
}

func buildStore(cfg *config.Config) (ports.Store, func(), error) {
	if cfg.Database.Type == "memory" {
		return memory.New(), func() {}, nil
	}

	store, err := sqlstore.Open(driverName(cfg.Database.Type), cfg.Database.GetDSN())
	if err != nil {
		return nil, func() {}, err
	}
	if err := store.Migrate(context.Background()); err != nil {
		return nil, func() {}, err
	}
	return store, func() { store.Close() }, nil
}

func driverName(t string) string {
	switch t {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	default:
		return "sqlite3"
	}
}

// runtimeReplicaAdapter bridges *containerruntime.Docker/Fake's optional
// HasReplica into strategy.ReplicaChecker, reporting false when the
// concrete runtime doesn't implement ports.ReplicaAware.
type runtimeReplicaAdapter struct {
	runtime ports.ContainerRuntime
}

func (r runtimeReplicaAdapter) HasReplica(ctx context.Context, target string) bool {
	if aware, ok := r.runtime.(ports.ReplicaAware); ok {
		return aware.HasReplica(ctx, target)
	}
	return false
}
