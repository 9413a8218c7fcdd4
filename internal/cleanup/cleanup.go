// Package cleanup implements the retention sweep (C9): periodically delete
// incidents and their actions older than the configured retention window.
// Per spec §5's single-control-thread model, Sweeper has no ticker or
// goroutine of its own — MaybeRun is called by the monitor loop on every
// tick and only does work once interval has elapsed, the same
// interleaved-by-time-check pattern the loop uses for threshold refresh.
package cleanup

import (
	"context"
	"time"

	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/observability"
	"github.com/sarika-03/controlplane/internal/ports"
)

// Sweeper purges expired incidents/actions from a Store.
type Sweeper struct {
	store    ports.Store
	clock    clock.Clock
	log      observability.Logger
	interval time.Duration
	retain   time.Duration
	lastRun  time.Time
}

// New creates a Sweeper that sweeps at most once per interval, deleting
// records older than retain.
func New(store ports.Store, c clock.Clock, log observability.Logger, interval, retain time.Duration) *Sweeper {
	return &Sweeper{store: store, clock: c, log: log, interval: interval, retain: retain}
}

// MaybeRun sweeps if interval has elapsed since the last run (or it has
// never run). Safe to call on every monitor tick.
func (s *Sweeper) MaybeRun(ctx context.Context) {
	now := s.clock.Now()
	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.interval {
		return
	}
	s.lastRun = now
	s.sweepOnce(ctx)
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.retain)
	incidents, actions, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Error("retention sweep failed", observability.Error(err))
		return
	}
	if incidents > 0 || actions > 0 {
		s.log.Info("retention sweep completed",
			observability.Int64("incidents_deleted", incidents),
			observability.Int64("actions_deleted", actions))
	}
}
