package health

import (
	"context"
	"fmt"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	infraDB "github.com/avatarctic/erp-cache/internal/infrastructure/db"
)

// Pinger is implemented by stores that can probe their remote end.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.Ping(ctx) }

// cacheHealthChecker reports the cache backend. The in-process fallback is
// degraded, not down: the service still answers, only without shared caching.
type cacheHealthChecker struct {
	cache  ports.CacheService
	pinger Pinger
}

func (c *cacheHealthChecker) Name() string { return "cache" }
func (c *cacheHealthChecker) Check(ctx context.Context) error {
	if c.cache.Backend() == cache.BackendFallback {
		return fmt.Errorf("%w: cache is using the in-process fallback", ports.ErrDegraded)
	}
	if c.pinger == nil {
		return nil
	}
	if err := c.pinger.Ping(ctx); err != nil {
		// reads degrade to misses, the service keeps answering
		return fmt.Errorf("%w: remote cache unreachable: %v", ports.ErrDegraded, err)
	}
	return nil
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewCacheHealthChecker creates a health checker for the cache backend.
// pinger may be nil when the remote store cannot be probed.
func NewCacheHealthChecker(svc ports.CacheService, pinger Pinger) ports.HealthChecker {
	return &cacheHealthChecker{cache: svc, pinger: pinger}
}
