// Package memory provides an in-process ports.Store for tests and for
// running the control plane without a database configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sarika-03/controlplane/internal/domain"
)

// Store is a mutex-guarded in-memory implementation of ports.Store.
type Store struct {
	mu         sync.Mutex
	incidents  map[int64]domain.Incident
	actions    map[int64]domain.RemediationAction
	nextInc    int64
	nextAct    int64
	thresholds domain.ThresholdConfig
	breaker    domain.BreakerConfig
}

// New creates an empty Store seeded with the built-in default policy.
func New() *Store {
	return &Store{
		incidents:  make(map[int64]domain.Incident),
		actions:    make(map[int64]domain.RemediationAction),
		thresholds: domain.DefaultThresholds(),
		breaker:    domain.DefaultBreakerConfig(),
	}
}

func (s *Store) LogIncident(ctx context.Context, incident domain.Incident) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextInc++
	incident.ID = s.nextInc
	s.incidents[incident.ID] = incident
	return incident.ID, nil
}

func (s *Store) LogAction(ctx context.Context, action domain.RemediationAction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAct++
	action.ID = s.nextAct
	s.actions[action.ID] = action
	return action.ID, nil
}

func (s *Store) ResolveIncident(ctx context.Context, id int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return domain.ErrAlreadyResolved
	}
	if err := inc.Resolve(now); err != nil {
		s.incidents[id] = inc
		return err
	}
	s.incidents[id] = inc
	return nil
}

func (s *Store) EscalateIncident(ctx context.Context, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return domain.ErrAlreadyResolved
	}
	inc.Escalate(reason)
	s.incidents[id] = inc
	return nil
}

func (s *Store) ReadThresholds(ctx context.Context) (domain.ThresholdConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thresholds, nil
}

func (s *Store) ReadBreakerConfig(ctx context.Context) (domain.BreakerConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breaker, nil
}

// DeleteOlderThan removes incidents (and their actions, cascading) whose
// Timestamp is before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var incidentsDeleted, actionsDeleted int64
	for id, inc := range s.incidents {
		if inc.Timestamp.Before(cutoff) {
			delete(s.incidents, id)
			incidentsDeleted++
			for aid, act := range s.actions {
				if act.IncidentID == id {
					delete(s.actions, aid)
					actionsDeleted++
				}
			}
		}
	}
	return incidentsDeleted, actionsDeleted, nil
}

// ListActiveIncidents returns all incidents currently in ACTIVE status.
func (s *Store) ListActiveIncidents(ctx context.Context) ([]domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Incident
	for _, inc := range s.incidents {
		if inc.Status == domain.StatusActive {
			out = append(out, inc)
		}
	}
	return out, nil
}

// Incidents returns a snapshot of all stored incidents, for test assertions.
func (s *Store) Incidents() []domain.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, inc)
	}
	return out
}
