package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	clearControlPlaneEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Monitor.PollSeconds)
	assert.Equal(t, 10, cfg.Monitor.ThresholdRefreshTicks)
	assert.Equal(t, 180, cfg.Monitor.RetentionDays)
	assert.Equal(t, 0.2, cfg.Thresholds.ErrorRate)
	assert.Equal(t, 80.0, cfg.Thresholds.CPUPercent)
	assert.Equal(t, 3, cfg.Breaker.MaxFailures)
	assert.Equal(t, "memory", cfg.Database.Type)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	clearControlPlaneEnv(t)
	t.Setenv("ERROR_RATE_THRESHOLD", "0.5")
	t.Setenv("CPU_THRESHOLD", "90")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/cp.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Thresholds.ErrorRate)
	assert.Equal(t, 90.0, cfg.Thresholds.CPUPercent)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/cp.db", cfg.Database.SQLitePath)
}

func TestValidateRejectsBadErrorRate(t *testing.T) {
	cfg := &Config{}
	cfg.Monitor.PollSeconds = 5
	cfg.Monitor.ThresholdRefreshTicks = 10
	cfg.Breaker.MaxFailures = 3
	cfg.Breaker.WindowSec = 300
	cfg.Breaker.CooldownSec = 120
	cfg.Database.Type = "memory"
	cfg.Thresholds.ErrorRate = 1.5

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestGetDSNPrefersExplicitURL(t *testing.T) {
	db := DatabaseConfig{Type: "postgres", URL: "postgres://example"}
	assert.Equal(t, "postgres://example", db.GetDSN())
}

func TestGetDSNBuildsPostgresFromFields(t *testing.T) {
	db := DatabaseConfig{
		Type: "postgres", Host: "db", Port: 5432, Username: "u", Password: "p",
		Database: "controlplane", SSLMode: "disable",
	}
	dsn := db.GetDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=controlplane")
}

func clearControlPlaneEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ERROR_RATE_THRESHOLD", "CPU_THRESHOLD", "RESPONSE_TIME_THRESHOLD_MS",
		"DB_TYPE", "DB_SQLITE_PATH", "DB_URL", "APP_HOST",
	} {
		_ = os.Unsetenv(key)
	}
}
