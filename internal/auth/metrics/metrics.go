package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginsSucceeded prometheus.Counter
	Logouts         prometheus.Counter
	AuthFailures    *prometheus.CounterVec
}

// New registers the auth metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_auth_users_registered_total",
			Help: "Accounts created",
		}),
		LoginsSucceeded: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_auth_logins_total",
			Help: "Successful logins",
		}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_auth_logouts_total",
			Help: "Sessions ended by logout",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlink_auth_failures_total",
			Help: "Failed authentication attempts, labeled by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

func (m *Metrics) IncrementLogins() {
	m.LoginsSucceeded.Inc()
}

func (m *Metrics) IncrementLogouts() {
	m.Logouts.Inc()
}

func (m *Metrics) IncrementAuthFailures(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}
