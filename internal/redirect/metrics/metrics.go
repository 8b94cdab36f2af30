package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shortlink/internal/redirect/models"
)

type Metrics struct {
	ResolutionsTotal *prometheus.CounterVec
	NavigationsTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ResolutionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_redirect_resolutions_total",
			Help: "Short link resolutions, labeled by outcome and device class",
		}, []string{"outcome", "device"}),
		NavigationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_redirect_navigations_total",
			Help: "Redirect pages by final navigation state",
		}, []string{"state"}),
	}
}

func (m *Metrics) ObserveResolution(res models.Resolution) {
	m.ResolutionsTotal.WithLabelValues(res.Outcome(), string(res.Device)).Inc()
}

func (m *Metrics) ObserveNavigation(state models.State) {
	m.NavigationsTotal.WithLabelValues(state.String()).Inc()
}
