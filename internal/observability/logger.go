// Package observability provides the structured logging and metrics
// collection used across the control plane, upgrading the teacher's
// hand-rolled logger/metrics to the pack's zap and prometheus/client_golang
// stacks while keeping the teacher's Logger/Metrics interface shape.
package observability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with attachable fields.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger
	Sync() error
}

// Field is a re-export of zap.Field so call sites never import zap directly.
type Field = zap.Field

// String creates a string field.
func String(key, value string) Field { return zap.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return zap.Int(key, value) }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return zap.Int64(key, value) }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return zap.Float64(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return zap.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return zap.Duration(key, value) }

// Error creates an error field.
func Error(err error) Field { return zap.Error(err) }

// Any creates a field carrying an arbitrary value.
func Any(key string, value interface{}) Field { return zap.Any(key, value) }

type zapLogger struct {
	l *zap.Logger
}

// NewLogger builds a Logger backed by zap, at the requested level
// ("debug"|"info"|"warn"|"error"), writing JSON to stderr.
func NewLogger(serviceName, level string) Logger {
	lvl := parseLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("service", serviceName))
	return &zapLogger{l: logger}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) Fatal(msg string, fields ...Field) { z.l.Fatal(msg, fields...) }
func (z *zapLogger) Sync() error                       { return z.l.Sync() }

func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return z
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return z.With(zap.String("request_id", requestID))
	}
	return z
}

type requestIDKey struct{}

// WithRequestID attaches a request id to the context for WithContext to pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
