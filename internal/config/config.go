// Package config loads the control plane's configuration from environment
// variables (with an optional YAML file as a base layer), mirroring the
// teacher's caarlos0/env + yaml.v3 layering.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/sarika-03/controlplane/internal/domain"
)

// Config holds all configuration for the control plane.
type Config struct {
	Monitor       MonitorConfig       `yaml:"monitor"`
	Thresholds    ThresholdsConfig    `yaml:"thresholds"`
	Breaker       BreakerConfig       `yaml:"circuit_breaker"`
	Database      DatabaseConfig      `yaml:"database" envPrefix:"DB_"`
	Notification  NotificationConfig `yaml:"notification"`
	Observability ObservabilityConfig `yaml:"observability" envPrefix:"OBSERVABILITY_"`
}

// MonitorConfig controls the monitor loop's cadence and targets.
type MonitorConfig struct {
	AppHost               string        `yaml:"app_host" env:"APP_HOST" envDefault:"http://localhost:8080"`
	PrimaryTarget         string        `yaml:"primary_target" env:"PRIMARY_TARGET" envDefault:"app"`
	PollSeconds           int           `yaml:"poll_seconds" env:"BOT_POLL_SECONDS" envDefault:"5"`
	DedupWindowSeconds    int           `yaml:"dedup_window_seconds" env:"DEDUP_WINDOW_SECONDS" envDefault:"60"`
	ThresholdRefreshTicks int           `yaml:"threshold_refresh_ticks" env:"THRESHOLD_REFRESH_TICKS" envDefault:"10"`
	RetentionDays         int           `yaml:"retention_days" env:"DATA_RETENTION_DAYS" envDefault:"180"`
	CleanupIntervalHours  int           `yaml:"cleanup_interval_hours" env:"CLEANUP_INTERVAL_HOURS" envDefault:"24"`
	FailureCheckSeconds   int           `yaml:"failure_check_seconds" env:"FAILURE_CHECK_INTERVAL" envDefault:"300"`
	ProbeTimeout          time.Duration `yaml:"probe_timeout" env:"PROBE_TIMEOUT" envDefault:"3s"`
	ActuatorGraceTimeout  time.Duration `yaml:"actuator_grace_timeout" env:"ACTUATOR_GRACE_TIMEOUT" envDefault:"10s"`
	ActuatorVerifyDelay   time.Duration `yaml:"actuator_verify_delay" env:"ACTUATOR_VERIFY_DELAY" envDefault:"2s"`
	ReconcileOnStartup    bool          `yaml:"reconcile_on_startup" env:"RECONCILE_ON_STARTUP" envDefault:"false"`
}

// ThresholdsConfig mirrors domain.ThresholdConfig with env/yaml tags. The
// entrypoint does not pass these values to the monitor loop or the store:
// the loop starts from domain.DefaultThresholds and then uses whatever the
// store's config table returns on its refresh cadence.
type ThresholdsConfig struct {
	ErrorRate                  float64 `yaml:"error_rate" env:"ERROR_RATE_THRESHOLD" envDefault:"0.2"`
	CPUPercent                 float64 `yaml:"cpu_percent" env:"CPU_THRESHOLD" envDefault:"80"`
	ResponseTimeMs             float64 `yaml:"response_time_ms" env:"RESPONSE_TIME_THRESHOLD_MS" envDefault:"500"`
	MLAnomalySeverityThreshold float64 `yaml:"ml_anomaly_severity_threshold" env:"ML_ANOMALY_SEVERITY_THRESHOLD" envDefault:"70"`
}

// BreakerConfig mirrors domain.BreakerConfig with env/yaml tags.
type BreakerConfig struct {
	MaxFailures int `yaml:"max_failures" env:"MAX_RESTARTS_PER_5MIN" envDefault:"3"`
	WindowSec   int `yaml:"window_sec" env:"BREAKER_WINDOW_SECONDS" envDefault:"300"`
	CooldownSec int `yaml:"cooldown_sec" env:"COOLDOWN_SECONDS" envDefault:"120"`
}

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	Type            string        `yaml:"type" env:"TYPE" envDefault:"memory"`
	URL             string        `yaml:"url" env:"URL" envExpand:"true"`
	Host            string        `yaml:"host" env:"HOST" envDefault:"localhost"`
	Port            int           `yaml:"port" env:"PORT" envDefault:"5432"`
	Database        string        `yaml:"database" env:"NAME" envDefault:"controlplane"`
	Username        string        `yaml:"username" env:"USERNAME" envDefault:"controlplane"`
	Password        string        `yaml:"password" env:"PASSWORD" envDefault:""`
	SSLMode         string        `yaml:"ssl_mode" env:"SSL_MODE" envDefault:"disable"`
	MaxConnections  int           `yaml:"max_connections" env:"MAX_CONNECTIONS" envDefault:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	SQLitePath      string        `yaml:"sqlite_path" env:"SQLITE_PATH" envDefault:"./controlplane.db"`
}

// NotificationConfig configures outbound notification delivery.
type NotificationConfig struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url" env:"SLACK_WEBHOOK_URL"`
	SendTimeout     time.Duration `yaml:"send_timeout" env:"NOTIFICATION_SEND_TIMEOUT" envDefault:"5s"`
	QueueSize       int           `yaml:"queue_size" env:"NOTIFICATION_QUEUE_SIZE" envDefault:"256"`
}

// ObservabilityConfig configures logging and metrics collection.
type ObservabilityConfig struct {
	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL" envDefault:"info"`
	ServiceName   string `yaml:"service_name" env:"SERVICE_NAME" envDefault:"controlplane"`
	EnableMetrics bool   `yaml:"enable_metrics" env:"ENABLE_METRICS" envDefault:"true"`
}

// Load loads configuration from an optional YAML file and then overlays
// environment variables, matching the teacher's file-then-env layering.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return nil
}

// Validate checks the loaded configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Monitor.PollSeconds <= 0 {
		return fmt.Errorf("poll seconds must be positive")
	}
	if c.Monitor.ThresholdRefreshTicks <= 0 {
		return fmt.Errorf("threshold refresh ticks must be positive")
	}
	if c.Thresholds.ErrorRate < 0 || c.Thresholds.ErrorRate > 1 {
		return fmt.Errorf("error rate threshold must be between 0 and 1")
	}
	if c.Breaker.MaxFailures <= 0 {
		return fmt.Errorf("max failures must be positive")
	}
	if c.Breaker.WindowSec <= 0 || c.Breaker.CooldownSec <= 0 {
		return fmt.Errorf("breaker window and cooldown must be positive")
	}

	switch c.Database.Type {
	case "postgres", "postgresql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres")
		}
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for mysql")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "memory":
		// no validation needed
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	return nil
}

// GetDSN returns the database connection string for the configured backend.
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	switch c.Type {
	case "postgres", "postgresql":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	case "sqlite":
		return c.SQLitePath
	default:
		return ""
	}
}

// Thresholds converts the config-file/env seed into a domain.ThresholdConfig.
func (c *ThresholdsConfig) Thresholds() domain.ThresholdConfig {
	return domain.ThresholdConfig{
		ErrorRate:                  c.ErrorRate,
		CPUPercent:                 c.CPUPercent,
		ResponseTimeMs:             c.ResponseTimeMs,
		MLAnomalySeverityThreshold: c.MLAnomalySeverityThreshold,
	}
}

// BreakerPolicy converts the config-file/env seed into a domain.BreakerConfig.
func (c *BreakerConfig) BreakerPolicy() domain.BreakerConfig {
	return domain.BreakerConfig{
		MaxFailures: c.MaxFailures,
		WindowSec:   c.WindowSec,
		CooldownSec: c.CooldownSec,
	}
}
