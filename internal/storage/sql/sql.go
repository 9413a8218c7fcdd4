// Package sql implements ports.Store over jmoiron/sqlx, grounded on the
// teacher's internal/database/sql_repository.go table-creation and
// CRUD style, upgraded from database/sql to sqlx's struct-scanning and
// widened from a single sqlite-only backend to postgres/mysql/sqlite via
// lib/pq, go-sql-driver/mysql, and mattn/go-sqlite3.
package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarika-03/controlplane/internal/domain"
)

// Store implements ports.Store against a SQL database reached through sqlx.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to driverName/dsn and wraps it as a Store. driverName is
// one of "postgres", "mysql", "sqlite3".
func Open(driverName, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	return &Store{db: db, driver: driverName}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the incidents/remediation_actions/config tables if they
// do not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	autoIncrement := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		autoIncrement = "SERIAL PRIMARY KEY"
	} else if s.driver == "mysql" {
		autoIncrement = "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}

	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS incidents (
			id %s,
			timestamp TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			details TEXT,
			status TEXT NOT NULL,
			affected_service TEXT NOT NULL,
			resolved_at TIMESTAMP,
			resolution_time_seconds REAL
		)`, autoIncrement),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS remediation_actions (
			id %s,
			incident_id INTEGER NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			action_type TEXT NOT NULL,
			target TEXT NOT NULL,
			scale_replicas INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT,
			execution_time_ms INTEGER NOT NULL,
			triggered_by TEXT NOT NULL,
			FOREIGN KEY (incident_id) REFERENCES incidents(id) ON DELETE CASCADE
		)`, autoIncrement),
		`CREATE TABLE IF NOT EXISTS config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) LogIncident(ctx context.Context, incident domain.Incident) (int64, error) {
	details, err := json.Marshal(incident.Details)
	if err != nil {
		return 0, fmt.Errorf("marshal incident details: %w", err)
	}

	query := `INSERT INTO incidents (timestamp, type, severity, details, status, affected_service, resolved_at, resolution_time_seconds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{
		incident.Timestamp, incident.Type, incident.Severity, string(details), incident.Status,
		incident.AffectedService, incident.ResolvedAt, incident.ResolutionTimeSeconds,
	}
	if s.driver == "postgres" {
		// lib/pq does not support LastInsertId; read the id back instead.
		var id int64
		if err := s.db.GetContext(ctx, &id, s.db.Rebind(query+" RETURNING id"), args...); err != nil {
			return 0, fmt.Errorf("insert incident: %w", err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("insert incident: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) LogAction(ctx context.Context, action domain.RemediationAction) (int64, error) {
	query := `INSERT INTO remediation_actions (incident_id, timestamp, action_type, target, scale_replicas, success, error_message, execution_time_ms, triggered_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []interface{}{
		action.IncidentID, action.Timestamp, action.ActionType, action.Target, action.ScaleReplicas,
		action.Success, action.ErrorMessage, action.ExecutionTimeMs, action.TriggeredBy,
	}
	if s.driver == "postgres" {
		// lib/pq does not support LastInsertId; read the id back instead.
		var id int64
		if err := s.db.GetContext(ctx, &id, s.db.Rebind(query+" RETURNING id"), args...); err != nil {
			return 0, fmt.Errorf("insert action: %w", err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("insert action: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) ResolveIncident(ctx context.Context, id int64, now time.Time) error {
	var row struct {
		Timestamp time.Time `db:"timestamp"`
		Status    string    `db:"status"`
	}
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT timestamp, status FROM incidents WHERE id = ?`), id); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrAlreadyResolved
		}
		return fmt.Errorf("read incident: %w", err)
	}
	if row.Status == string(domain.StatusResolved) {
		return domain.ErrAlreadyResolved
	}

	elapsed := now.Sub(row.Timestamp).Seconds()
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE incidents SET status = ?, resolved_at = ?, resolution_time_seconds = ? WHERE id = ?`),
		domain.StatusResolved, now, elapsed, id,
	)
	if err != nil {
		return fmt.Errorf("resolve incident: %w", err)
	}
	return nil
}

func (s *Store) EscalateIncident(ctx context.Context, id int64, reason string) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE incidents SET status = ? WHERE id = ?`),
		domain.StatusEscalated, id,
	)
	if err != nil {
		return fmt.Errorf("escalate incident: %w", err)
	}
	return nil
}

func (s *Store) ReadThresholds(ctx context.Context) (domain.ThresholdConfig, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, s.db.Rebind(`SELECT value FROM config WHERE key = ?`), "thresholds")
	if err == sql.ErrNoRows {
		return domain.DefaultThresholds(), nil
	}
	if err != nil {
		return domain.ThresholdConfig{}, fmt.Errorf("read thresholds: %w", err)
	}
	t := domain.DefaultThresholds()
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return domain.ThresholdConfig{}, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	return t, nil
}

func (s *Store) ReadBreakerConfig(ctx context.Context) (domain.BreakerConfig, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, s.db.Rebind(`SELECT value FROM config WHERE key = ?`), "circuit_breaker")
	if err == sql.ErrNoRows {
		return domain.DefaultBreakerConfig(), nil
	}
	if err != nil {
		return domain.BreakerConfig{}, fmt.Errorf("read breaker config: %w", err)
	}
	b := domain.DefaultBreakerConfig()
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return domain.BreakerConfig{}, fmt.Errorf("unmarshal breaker config: %w", err)
	}
	return b, nil
}

// ListActiveIncidents returns all incidents currently in ACTIVE status.
func (s *Store) ListActiveIncidents(ctx context.Context) ([]domain.Incident, error) {
	var rows []struct {
		ID                    int64      `db:"id"`
		Timestamp             time.Time  `db:"timestamp"`
		Type                  string     `db:"type"`
		Severity              string     `db:"severity"`
		Details               string     `db:"details"`
		Status                string     `db:"status"`
		AffectedService       string     `db:"affected_service"`
		ResolvedAt            *time.Time `db:"resolved_at"`
		ResolutionTimeSeconds *float64   `db:"resolution_time_seconds"`
	}
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT id, timestamp, type, severity, details, status, affected_service, resolved_at, resolution_time_seconds FROM incidents WHERE status = ?`),
		domain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	out := make([]domain.Incident, 0, len(rows))
	for _, r := range rows {
		var details map[string]interface{}
		if r.Details != "" {
			if err := json.Unmarshal([]byte(r.Details), &details); err != nil {
				return nil, fmt.Errorf("unmarshal incident details: %w", err)
			}
		}
		out = append(out, domain.Incident{
			ID:                    r.ID,
			Timestamp:             r.Timestamp,
			Type:                  domain.IncidentType(r.Type),
			Severity:              domain.Severity(r.Severity),
			Details:               details,
			Status:                domain.IncidentStatus(r.Status),
			AffectedService:       r.AffectedService,
			ResolvedAt:            r.ResolvedAt,
			ResolutionTimeSeconds: r.ResolutionTimeSeconds,
		})
	}
	return out, nil
}

// DeleteOlderThan removes incidents (cascading to remediation_actions) whose
// timestamp is before cutoff, implementing the retention sweep (C9).
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(`SELECT id FROM incidents WHERE timestamp < ?`), cutoff); err != nil {
		return 0, 0, fmt.Errorf("select expired incidents: %w", err)
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	actionsRes, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM remediation_actions WHERE incident_id IN (SELECT id FROM incidents WHERE timestamp < ?)`), cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete expired actions: %w", err)
	}
	actionsDeleted, _ := actionsRes.RowsAffected()

	incidentsRes, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM incidents WHERE timestamp < ?`), cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete expired incidents: %w", err)
	}
	incidentsDeleted, _ := incidentsRes.RowsAffected()

	return incidentsDeleted, actionsDeleted, nil
}
