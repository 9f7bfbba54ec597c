package ports

import (
	"context"
	"time"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
)

// CacheStore is the capability set a cache backend must provide.
// Implementations absorb their own failures: reads degrade to a miss, writes
// and deletes are best effort, and errors are logged rather than returned.
type CacheStore interface {
	// Get returns the raw bytes for key. ok=false on miss, expiry or failure.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value for key. ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string)
	// DeleteByPattern removes every key matching the glob pattern and
	// returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) int
	// Keys lists keys matching pattern. The result may be capped and is meant
	// for diagnostics only.
	Keys(ctx context.Context, pattern string) []string
	// Count returns the number of live keys in the store's namespace.
	Count(ctx context.Context) int
	// FlushAll removes every key in the store's namespace, across tenants.
	FlushAll(ctx context.Context)
}

// CacheStoreConnector attempts to reach a remote store once. ok=false means
// the remote store is absent or unusable and the fallback must be used.
type CacheStoreConnector func(ctx context.Context) (store CacheStore, ok bool)

// CacheService is the backend-agnostic cache façade consumed by the rest of
// the application. No method returns an error: cache failure never becomes
// application failure.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value; ttl <= 0 uses the policy default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	SetFor(ctx context.Context, key string, value []byte, class cache.DataClass)
	Invalidate(ctx context.Context, key string)
	InvalidatePattern(ctx context.Context, pattern string) int
	InvalidateCompany(ctx context.Context, companyID string) int
	Flush(ctx context.Context)
	Stats(ctx context.Context) cache.Stats
	Backend() cache.BackendKind
	Policy() cache.Policy
}
