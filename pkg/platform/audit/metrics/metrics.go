package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit publisher and its sinks.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	EventsDropped   prometheus.Counter
	EventsEnqueued  prometheus.Counter
	WriteDuration   prometheus.Histogram
	WriteFailures   *prometheus.CounterVec
	EventsProcessed prometheus.Counter
	SinkFallbacks   prometheus.Counter
}

// New registers the audit metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_audit_queue_depth",
			Help: "Current number of events in the audit publisher queue",
		}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to full buffer",
		}),
		EventsEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_audit_events_enqueued_total",
			Help: "Total number of audit events successfully enqueued",
		}),
		WriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shortlink_audit_write_duration_seconds",
			Help:    "Time taken to write an audit event to its sink",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		WriteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_audit_write_failures_total",
			Help: "Total number of audit event write failures by sink",
		}, []string{"sink"}),
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_audit_events_processed_total",
			Help: "Total number of audit events written by the worker",
		}),
		SinkFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_audit_sink_fallbacks_total",
			Help: "Total number of audit events routed to the fallback sink",
		}),
	}
}

func (m *Metrics) IncQueueDepth() {
	m.QueueDepth.Inc()
}

func (m *Metrics) DecQueueDepth() {
	m.QueueDepth.Dec()
}

func (m *Metrics) IncEventsDropped() {
	m.EventsDropped.Inc()
}

func (m *Metrics) IncEventsEnqueued() {
	m.EventsEnqueued.Inc()
}

// ObserveWriteDuration records sink write latency.
func (m *Metrics) ObserveWriteDuration(durationSeconds float64) {
	m.WriteDuration.Observe(durationSeconds)
}

func (m *Metrics) IncWriteFailures(sink string) {
	m.WriteFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncEventsProcessed() {
	m.EventsProcessed.Inc()
}

func (m *Metrics) IncSinkFallbacks() {
	m.SinkFallbacks.Inc()
}
