package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides counters/gauges/histograms for the control loop. Only the
// collection surface is implemented here — exposing them over HTTP is the
// metric-gauge-exposition concern the spec marks out of scope, so no
// Registerer.Handler() is ever wired to a mux.
type Metrics interface {
	IncCounter(name string, labels prometheus.Labels)
	SetGauge(name string, value float64, labels prometheus.Labels)
	ObserveDuration(name string, d time.Duration, labels prometheus.Labels)
}

// PromMetrics backs Metrics with prometheus client_golang collectors
// registered against a private registry (never exposed).
type PromMetrics struct {
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewMetrics creates a PromMetrics instance with the counters/gauges the
// control loop emits pre-registered.
func NewMetrics() *PromMetrics {
	reg := prometheus.NewRegistry()
	m := &PromMetrics{
		registry:   reg,
		counters:   map[string]*prometheus.CounterVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}

	m.registerCounter("incidents_detected_total", "type", "severity")
	m.registerCounter("actions_executed_total", "action_type", "success")
	m.registerCounter("breaker_blocks_total", "target")
	m.registerCounter("notifications_dropped_total")
	m.registerGauge("breaker_state", "target")
	m.registerHistogram("tick_duration_seconds")

	return m
}

func (m *PromMetrics) registerCounter(name string, labelNames ...string) {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "controlplane_" + name,
		Help: name,
	}, labelNames)
	m.registry.MustRegister(cv)
	m.counters[name] = cv
}

func (m *PromMetrics) registerGauge(name string, labelNames ...string) {
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "controlplane_" + name,
		Help: name,
	}, labelNames)
	m.registry.MustRegister(gv)
	m.gauges[name] = gv
}

func (m *PromMetrics) registerHistogram(name string, labelNames ...string) {
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "controlplane_" + name,
		Help:    name,
		Buckets: prometheus.DefBuckets,
	}, labelNames)
	m.registry.MustRegister(hv)
	m.histograms[name] = hv
}

// IncCounter increments the named counter, matching labels to the
// registration order is the caller's responsibility (as with any
// CounterVec.With).
func (m *PromMetrics) IncCounter(name string, labels prometheus.Labels) {
	if cv, ok := m.counters[name]; ok {
		cv.With(labels).Inc()
	}
}

// SetGauge sets the named gauge.
func (m *PromMetrics) SetGauge(name string, value float64, labels prometheus.Labels) {
	if gv, ok := m.gauges[name]; ok {
		gv.With(labels).Set(value)
	}
}

// ObserveDuration records a duration observation on the named histogram.
func (m *PromMetrics) ObserveDuration(name string, d time.Duration, labels prometheus.Labels) {
	if hv, ok := m.histograms[name]; ok {
		hv.With(labels).Observe(d.Seconds())
	}
}

// Registry exposes the underlying prometheus registry for tests that want to
// assert on gathered metric families without standing up an HTTP server.
func (m *PromMetrics) Registry() *prometheus.Registry { return m.registry }

// NoOpMetrics satisfies Metrics while discarding everything, used when
// metrics collection is disabled.
type NoOpMetrics struct{}

func (NoOpMetrics) IncCounter(string, prometheus.Labels)                  {}
func (NoOpMetrics) SetGauge(string, float64, prometheus.Labels)           {}
func (NoOpMetrics) ObserveDuration(string, time.Duration, prometheus.Labels) {}
