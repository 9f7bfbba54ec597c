package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

const defaultStatsSample = 20

// CacheManagerOptions tunes a CacheManager.
type CacheManagerOptions struct {
	Policy      cache.Policy
	StatsSample int
	Metrics     *CacheMetrics
}

// CacheManager is the backend-agnostic cache façade. The backend is chosen
// once, at construction, and never changes for the life of the instance:
// a transient remote failure degrades that single operation, it does not
// switch the manager to the fallback.
type CacheManager struct {
	store       ports.CacheStore
	backend     cache.BackendKind
	policy      cache.Policy
	statsSample int
	instanceID  string
	metrics     *CacheMetrics
	logger      *logrus.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCacheManager calls connect exactly once. If it yields a store the
// manager is remote-backed, otherwise it uses fallback, which must not be nil.
func NewCacheManager(ctx context.Context, connect ports.CacheStoreConnector, fallback ports.CacheStore, opts CacheManagerOptions, logger *logrus.Logger) *CacheManager {
	m := &CacheManager{
		store:       fallback,
		backend:     cache.BackendFallback,
		policy:      opts.Policy,
		statsSample: opts.StatsSample,
		instanceID:  uuid.NewString(),
		metrics:     opts.Metrics,
		logger:      logger,
	}
	if m.statsSample <= 0 {
		m.statsSample = defaultStatsSample
	}
	if connect != nil {
		if remote, ok := connect(ctx); ok && remote != nil {
			m.store = remote
			m.backend = cache.BackendRemote
		}
	}
	m.metrics.selected(m.backend)
	if m.logger != nil {
		entry := m.logger.WithFields(logrus.Fields{"backend": m.backend, "instance_id": m.instanceID})
		if m.backend == cache.BackendFallback {
			entry.Warn("cache running on in-process fallback; entries are not shared across instances")
		} else {
			entry.Info("cache running on remote store")
		}
	}
	return m
}

// Get returns the raw value for key; any backend failure is a miss.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := m.store.Get(ctx, key)
	if ok {
		m.hits.Add(1)
		m.metrics.observe(m.backend, "get", "hit")
	} else {
		m.misses.Add(1)
		m.metrics.observe(m.backend, "get", "miss")
	}
	return v, ok
}

// Set stores value under key. A non-positive ttl uses the policy default.
func (m *CacheManager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.policy.Default()
	}
	m.store.Set(ctx, key, value, ttl)
	m.metrics.observe(m.backend, "set", "ok")
}

// SetFor stores value with the TTL configured for class.
func (m *CacheManager) SetFor(ctx context.Context, key string, value []byte, class cache.DataClass) {
	m.Set(ctx, key, value, m.policy.TTLFor(class))
}

// Invalidate removes key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) {
	m.store.Delete(ctx, key)
	m.metrics.observe(m.backend, "invalidate", "ok")
}

// InvalidatePattern removes every key matching the glob pattern. A pattern
// such as "*" clears every tenant; scoping is the caller's job.
func (m *CacheManager) InvalidatePattern(ctx context.Context, pattern string) int {
	n := m.store.DeleteByPattern(ctx, pattern)
	m.metrics.observe(m.backend, "invalidate_pattern", "ok")
	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{"pattern": pattern, "deleted": n, "backend": m.backend}).Debug("cache pattern invalidated")
	}
	return n
}

// InvalidateCompany removes every key scoped to companyID.
func (m *CacheManager) InvalidateCompany(ctx context.Context, companyID string) int {
	n := 0
	for _, pattern := range cache.TenantPatterns(companyID) {
		n += m.InvalidatePattern(ctx, pattern)
	}
	return n
}

// Flush clears the whole cache namespace, for every tenant.
func (m *CacheManager) Flush(ctx context.Context) {
	m.store.FlushAll(ctx)
	m.metrics.observe(m.backend, "flush", "ok")
	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{"backend": m.backend, "instance_id": m.instanceID}).Warn("cache flushed")
	}
}

// Stats returns a diagnostic snapshot.
func (m *CacheManager) Stats(ctx context.Context) cache.Stats {
	sample := m.store.Keys(ctx, "*")
	if len(sample) > m.statsSample {
		sample = sample[:m.statsSample]
	}
	return cache.Stats{
		KeyCount:   m.store.Count(ctx),
		Backend:    m.backend,
		SampleKeys: sample,
		InstanceID: m.instanceID,
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
	}
}

// Backend reports which store was selected at construction.
func (m *CacheManager) Backend() cache.BackendKind { return m.backend }

// Policy returns the TTL table in force.
func (m *CacheManager) Policy() cache.Policy { return m.policy }

var _ ports.CacheService = (*CacheManager)(nil)
