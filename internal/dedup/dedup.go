// Package dedup suppresses re-detection of the same incident type on the
// same target within a rolling window (C3), so a sustained anomaly opens
// one incident instead of one per tick.
package dedup

import (
	"sync"
	"time"

	"github.com/sarika-03/controlplane/internal/clock"
	"github.com/sarika-03/controlplane/internal/domain"
)

type key struct {
	target string
	typ    domain.IncidentType
}

// Deduplicator tracks the last-seen time of each (target, incident type)
// pair and reports whether a new occurrence falls inside the suppression
// window.
type Deduplicator struct {
	clock  clock.Clock
	window time.Duration

	mu       sync.Mutex
	lastSeen map[key]time.Time
}

// New creates a Deduplicator with the given suppression window.
func New(window time.Duration, c clock.Clock) *Deduplicator {
	return &Deduplicator{
		clock:    c,
		window:   window,
		lastSeen: make(map[key]time.Time),
	}
}

// Observe reports whether (target, typ) is a duplicate of something seen
// within the window, and records this occurrence regardless so the window
// slides forward from the most recent sighting.
func (d *Deduplicator) Observe(target string, typ domain.IncidentType) (duplicate bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := key{target: target, typ: typ}
	now := d.clock.Now()

	if last, ok := d.lastSeen[k]; ok && now.Sub(last) < d.window {
		d.lastSeen[k] = now
		return true
	}

	d.lastSeen[k] = now
	return false
}
