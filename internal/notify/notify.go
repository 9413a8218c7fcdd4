// Package notify delivers human-facing alerts for escalated incidents and
// breaker trips. Delivery runs off a bounded, drop-oldest channel so a slow
// or unreachable webhook never backs up the monitor loop.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"github.com/sarika-03/controlplane/internal/observability"
)

// Severity keys a Notification to the event class that produced it, per
// §7's table: INFO for a scheduled cleanup summary or remediation starting,
// WARNING for a gate rejection, CRITICAL for actuator failure/escalation,
// SUCCESS for a successful remediation.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
	SeveritySuccess  Severity = "SUCCESS"
)

// Notification is a single human-facing message to deliver. ID lets a
// delivery log line be correlated back to the triggering incident/breaker
// event even after the notification has been dropped.
type Notification struct {
	ID       string
	Severity Severity
	Title    string
	Body     string
	Service  string
}

// NewNotification builds a Notification with a fresh correlation ID.
func NewNotification(severity Severity, title, body, service string) Notification {
	return Notification{ID: uuid.NewString(), Severity: severity, Title: title, Body: body, Service: service}
}

// Sender delivers a Notification. Implementations must not block longer
// than they are willing to hold up the emitter's worker goroutine.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Emitter buffers notifications on a bounded channel and delivers them via
// Sender from a single worker goroutine, dropping the oldest pending item
// when the buffer is full rather than blocking the caller.
type Emitter struct {
	sender  Sender
	log     observability.Logger
	metrics observability.Metrics
	queue   chan Notification
	done    chan struct{}
}

// NewEmitter creates an Emitter with the given bounded queue size.
func NewEmitter(sender Sender, log observability.Logger, metrics observability.Metrics, queueSize int) *Emitter {
	return &Emitter{
		sender:  sender,
		log:     log,
		metrics: metrics,
		queue:   make(chan Notification, queueSize),
		done:    make(chan struct{}),
	}
}

// Start runs the delivery worker until ctx is canceled.
func (e *Emitter) Start(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-e.queue:
			if err := e.sender.Send(ctx, n); err != nil {
				e.log.Warn("notification delivery failed", observability.String("title", n.Title), observability.Error(err))
			}
		}
	}
}

// Wait blocks until Start has returned.
func (e *Emitter) Wait() { <-e.done }

// Emit enqueues a notification, dropping the oldest queued item if the
// buffer is full.
func (e *Emitter) Emit(n Notification) {
	select {
	case e.queue <- n:
	default:
		select {
		case <-e.queue:
		default:
		}
		select {
		case e.queue <- n:
		default:
		}
		if e.metrics != nil {
			e.metrics.IncCounter("notifications_dropped_total", nil)
		}
		if e.log != nil {
			e.log.Warn("notification queue full, dropped oldest", observability.String("title", n.Title))
		}
	}
}

// SlackSender delivers notifications to a Slack incoming webhook, bounding
// each delivery to timeout so a hung webhook can't stall the worker.
type SlackSender struct {
	webhookURL string
	timeout    time.Duration
}

// NewSlackSender creates a SlackSender targeting webhookURL.
func NewSlackSender(webhookURL string, timeout time.Duration) *SlackSender {
	return &SlackSender{webhookURL: webhookURL, timeout: timeout}
}

func (s *SlackSender) Send(ctx context.Context, n Notification) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("*[%s] %s*\n%s", n.Severity, n.Title, n.Body),
	}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

// ConsoleSender logs notifications instead of delivering them externally,
// used when no webhook is configured.
type ConsoleSender struct {
	log observability.Logger
}

// NewConsoleSender creates a ConsoleSender.
func NewConsoleSender(log observability.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (c *ConsoleSender) Send(ctx context.Context, n Notification) error {
	c.log.Info("notification",
		observability.String("id", n.ID),
		observability.String("severity", string(n.Severity)),
		observability.String("title", n.Title),
		observability.String("body", n.Body),
		observability.String("service", n.Service))
	return nil
}
