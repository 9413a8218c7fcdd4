// Package errs centralizes the error taxonomy from spec §7 so that callers
// can test error kind with errors.Is instead of string matching, while the
// wrapped message (via fmt.Errorf("...: %w", err)) still carries the
// human-readable detail the teacher's code always attaches.
package errs

import "errors"

// Probe errors (§7 "Probe errors").
var (
	ErrConnectionRefused = errors.New("connection_refused")
	ErrProbeTimeout      = errors.New("timeout")
	ErrMalformedBody     = errors.New("malformed_body")
)

// Actuator errors (§7 "Actuator errors").
var (
	ErrNotFound          = errors.New("not_found")
	ErrActuatorTimeout   = errors.New("timeout")
	ErrPostStateMismatch = errors.New("post_state_mismatch")
	ErrRuntimeUnavailable = errors.New("runtime_unavailable")
)

// Gate rejection errors (§7 "Gate rejections").
var (
	ErrCircuitOpen       = errors.New("circuit_open")
	ErrRateWindowExceeded = errors.New("rate_window_exceeded")
)

// Persistence errors (§7 "Persistence errors").
var (
	ErrTransient = errors.New("transient")
	ErrFatal     = errors.New("fatal")
)
