package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LinksCreated     prometheus.Counter
	LinksDeleted     prometheus.Counter
	CreateFailures   *prometheus.CounterVec
	ImageUploadBytes prometheus.Histogram
}

// New registers the link metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_links_created_total",
			Help: "Links created",
		}),
		LinksDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_links_deleted_total",
			Help: "Links deleted",
		}),
		CreateFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_links_create_failures_total",
			Help: "Rejected or failed link creations, labeled by reason",
		}, []string{"reason"}),
		ImageUploadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "shortlink_links_image_upload_bytes",
			Help:    "Size of accepted link images",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 6),
		}),
	}
}

func (m *Metrics) IncLinksCreated() {
	m.LinksCreated.Inc()
}

func (m *Metrics) IncLinksDeleted() {
	m.LinksDeleted.Inc()
}

func (m *Metrics) IncCreateFailure(reason string) {
	m.CreateFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveImageBytes(n int64) {
	m.ImageUploadBytes.Observe(float64(n))
}
