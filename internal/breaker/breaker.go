// Package breaker implements the per-target sliding-window circuit breaker
// (C5). Each target is gated independently — a storm of restarts on one
// container never blocks remediation on another.
package breaker

import (
	"sync"
	"time"

	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/domain"
)

// State is the breaker's externally visible state machine.
type State string

const (
	Closed   State = "CLOSED"
	Open     State = "OPEN"
	HalfOpen State = "HALF_OPEN"
)

// entry tracks one target's attempt history and state.
type entry struct {
	mu         sync.Mutex
	attempts   []time.Time // ring of attempt timestamps within the window
	state      State
	openedAt   time.Time
}

// Breaker gates remediation attempts per target using a sliding window:
// at most cfg.MaxFailures attempts within cfg.Window() are allowed before
// the target trips to OPEN for cfg.Cooldown(), after which a single
// HALF_OPEN probe attempt is allowed through.
type Breaker struct {
	clock clock.Clock
	cfg   domain.BreakerConfig

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Breaker with the given policy and clock (inject clock.Fake
// in tests to exercise window/cooldown transitions deterministically).
func New(cfg domain.BreakerConfig, c clock.Clock) *Breaker {
	return &Breaker{
		clock:   c,
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
}

func (b *Breaker) entryFor(target string) *entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[target]
	if !ok {
		e = &entry{state: Closed}
		b.entries[target] = e
	}
	return e
}

// Allow reports whether a remediation attempt against target may proceed
// right now. It does not record the attempt — call RecordAttempt after the
// caller decides to actually act.
func (b *Breaker) Allow(target string) bool {
	e := b.entryFor(target)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := b.clock.Now()
	e.prune(now, b.cfg.Window())

	switch e.state {
	case Closed:
		return len(e.attempts) < b.cfg.MaxFailures
	case Open:
		if now.Sub(e.openedAt) >= b.cfg.Cooldown() {
			e.state = HalfOpen
			return true
		}
		return false
	case HalfOpen:
		return true
	default:
		return false
	}
}

// RecordAttempt records that an attempt happened at the current time and
// updates the breaker's state based on success/failure.
func (b *Breaker) RecordAttempt(target string, success bool) {
	e := b.entryFor(target)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := b.clock.Now()
	e.prune(now, b.cfg.Window())
	e.attempts = append(e.attempts, now)

	switch e.state {
	case HalfOpen:
		if success {
			e.state = Closed
			e.attempts = nil
		} else {
			e.state = Open
			e.openedAt = now
		}
	case Closed:
		if len(e.attempts) >= b.cfg.MaxFailures {
			e.state = Open
			e.openedAt = now
		}
	case Open:
		// Shouldn't normally record while open (Allow would have refused),
		// but keep the invariant true regardless.
		e.openedAt = now
	}
}

// StateOf reports the current state of a target for observability.
func (b *Breaker) StateOf(target string) State {
	e := b.entryFor(target)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prune(b.clock.Now(), b.cfg.Window())
	return e.state
}

// prune drops attempts that have aged out of the sliding window. Caller
// must hold e.mu.
func (e *entry) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(e.attempts); i++ {
		if e.attempts[i].After(cutoff) {
			break
		}
	}
	e.attempts = e.attempts[i:]
}
