// Package clock provides the single time source that the dedup window, the
// breaker's sliding window and cooldown, the monitor loop's cadence, and the
// cleanup schedule all consult. Nothing in internal/dedup, internal/breaker,
// internal/monitor, or internal/cleanup is allowed to call time.Now directly
// (design note §9) so that tests can drive every temporal property with a
// Fake instead of real sleeps.
package clock

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock access and timer construction.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker mirrors the subset of *time.Ticker the monitor loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is the production Clock backed by the platform clock.
type Real struct{}

// NewReal returns the production clock.
func NewReal() Real { return Real{} }

func (Real) Now() time.Time                        { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (Real) NewTicker(d time.Duration) Ticker       { return realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Fake is a manually-advanced Clock for deterministic tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake creates a Fake clock starting at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward by d, firing any tickers/timers whose
// deadline falls within the new window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	for _, t := range tickers {
		t.maybeFire(now)
	}
}

func (f *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	deadline := f.Now().Add(d)
	if !deadline.After(f.Now()) {
		ch <- f.Now()
		return ch
	}
	// Simplification: fake After fires the next time Advance crosses the
	// deadline. Tests that need After should Advance past it.
	go func() {
		for {
			time.Sleep(time.Millisecond)
			if !f.Now().Before(deadline) {
				ch <- f.Now()
				return
			}
		}
	}()
	return ch
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time, 1), interval: d, next: f.Now().Add(d)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

type fakeTicker struct {
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *fakeTicker) maybeFire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	for !now.Before(t.next) {
		select {
		case t.ch <- t.next:
		default:
		}
		t.next = t.next.Add(t.interval)
	}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}
