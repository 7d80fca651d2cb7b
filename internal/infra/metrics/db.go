package metrics

import (
	"context"

	"demo-service/internal/domain/ports/repository"

	"github.com/prometheus/client_golang/prometheus"
)

// DependencyMetrics tracks connectivity of the database and cache.
type DependencyMetrics struct {
	dbStatus    prometheus.Gauge
	cacheStatus prometheus.Gauge
	poolStats   *prometheus.GaugeVec
}

func NewDependencyMetrics(r *Registry) *DependencyMetrics {
	return &DependencyMetrics{
		dbStatus: r.RegisterGauge(
			"db_connection_status",
			"Database connection status (1 = connected, 0 = disconnected)",
		),
		cacheStatus: r.RegisterGauge(
			"cache_connection_status",
			"Cache connection status (1 = connected, 0 = disconnected)",
		),
		poolStats: r.RegisterGaugeVec(
			"db_pool_stats",
			"Current state of the database connection pool.",
			"state", // 'total', 'idle', 'in_use', 'max'
		),
	}
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func (m *DependencyMetrics) SetDBConnected(ok bool)    { m.dbStatus.Set(boolGauge(ok)) }
func (m *DependencyMetrics) SetCacheConnected(ok bool) { m.cacheStatus.Set(boolGauge(ok)) }

func (m *DependencyMetrics) SetDBPoolStats(st repository.PoolStat) {
	m.poolStats.WithLabelValues("total").Set(float64(st.Total))
	m.poolStats.WithLabelValues("idle").Set(float64(st.Idle))
	m.poolStats.WithLabelValues("in_use").Set(float64(st.InUse))
	m.poolStats.WithLabelValues("max").Set(float64(st.Max))
}

// PoolStatsRefresher returns a sampler hook that copies the pool occupancy into db_pool_stats.
func (m *DependencyMetrics) PoolStatsRefresher(db repository.Database) func(context.Context) error {
	return func(context.Context) error {
		m.SetDBPoolStats(db.Stat())
		return nil
	}
}
