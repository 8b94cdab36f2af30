package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics mirrors database/sql pool statistics into Prometheus.
type PoolMetrics struct {
	openConns    prometheus.Gauge
	inUseConns   prometheus.Gauge
	idleConns    prometheus.Gauge
	waits        prometheus.Counter
	waitDuration prometheus.Counter
}

func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	f := promauto.With(reg)
	return &PoolMetrics{
		openConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_db_pool_open_conns",
			Help: "Number of established connections, in use or idle",
		}),
		inUseConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_db_pool_in_use_conns",
			Help: "Number of connections currently in use",
		}),
		idleConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_db_pool_idle_conns",
			Help: "Number of idle connections",
		}),
		waits: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_db_pool_waits_total",
			Help: "Number of times a query waited for a free connection",
		}),
		waitDuration: f.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_db_pool_wait_seconds_total",
			Help: "Total time spent waiting for a free connection",
		}),
	}
}

// RecordStats publishes the current pool statistics.
func (p *Pool) RecordStats() {
	if p == nil || p.metrics == nil {
		return
	}
	p.lastStats = p.metrics.record(p.Stats(), p.lastStats)
}

// StartPoolStats records pool statistics every interval until ctx is done.
func (p *Pool) StartPoolStats(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if logger != nil {
				logger.Debug("database pool stats recorder stopped")
			}
			return
		case <-ticker.C:
			p.RecordStats()
		}
	}
}

// record sets the gauges and advances the counters by the delta from last.
func (m *PoolMetrics) record(stats sql.DBStats, last sql.DBStats) sql.DBStats {
	m.openConns.Set(float64(stats.OpenConnections))
	m.inUseConns.Set(float64(stats.InUse))
	m.idleConns.Set(float64(stats.Idle))

	if stats.WaitCount > last.WaitCount {
		m.waits.Add(float64(stats.WaitCount - last.WaitCount))
	}
	if stats.WaitDuration > last.WaitDuration {
		m.waitDuration.Add((stats.WaitDuration - last.WaitDuration).Seconds())
	}
	return stats
}
