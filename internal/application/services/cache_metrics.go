package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
)

// CacheMetrics exports cache activity to Prometheus. A nil *CacheMetrics is
// valid and records nothing.
type CacheMetrics struct {
	operations *prometheus.CounterVec
	backend    *prometheus.GaugeVec
}

// NewCacheMetrics builds the cache collectors and registers them with reg
// when reg is not nil.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_cache_operations_total",
				Help: "Cache operations by backend, operation and result",
			},
			[]string{"backend", "operation", "result"},
		),
		backend: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "erp_cache_backend_info",
				Help: "Set to 1 for the cache backend selected at startup",
			},
			[]string{"backend"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.backend)
	}
	return m
}

func (m *CacheMetrics) observe(backend cache.BackendKind, operation, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(backend), operation, result).Inc()
}

func (m *CacheMetrics) selected(backend cache.BackendKind) {
	if m == nil {
		return
	}
	m.backend.WithLabelValues(string(backend)).Set(1)
}
