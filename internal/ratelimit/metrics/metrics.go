package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shortlink/internal/ratelimit/models"
)

type Metrics struct {
	AdmissionDecisionsTotal *prometheus.CounterVec
	TrackedKeys             prometheus.Gauge
	SweepRemovedTotal       prometheus.Counter
	SweepRunsTotal          *prometheus.CounterVec
	SweepDurationSeconds    prometheus.Histogram
}

// New registers the limiter metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AdmissionDecisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_ratelimit_decisions_total",
			Help: "Admission decisions, labeled by outcome",
		}, []string{"decision"}),
		TrackedKeys: f.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_ratelimit_tracked_keys",
			Help: "Client keys currently held by the admission limiter",
		}),
		SweepRemovedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_ratelimit_sweep_removed_total",
			Help: "Stale client records removed by the sweep",
		}),
		SweepRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_ratelimit_sweep_runs_total",
			Help: "Sweep runs, labeled by status",
		}, []string{"status"}),
		SweepDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name: "shortlink_ratelimit_sweep_duration_seconds",
			Help: "Duration of sweep runs in seconds",
		}),
	}
}

func (m *Metrics) ObserveDecision(d models.Decision) {
	m.AdmissionDecisionsTotal.WithLabelValues(d.String()).Inc()
}

func (m *Metrics) ObserveSweep(status string, removed, remaining int, seconds float64) {
	m.SweepRunsTotal.WithLabelValues(status).Inc()
	m.SweepDurationSeconds.Observe(seconds)
	m.SweepRemovedTotal.Add(float64(removed))
	m.TrackedKeys.Set(float64(remaining))
}
