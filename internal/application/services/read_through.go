package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// Fetcher loads fresh data when the cache misses.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Get decodes the cached JSON value for key into T. A missing key, a backend
// failure or a payload that no longer decodes into T are all misses.
func Get[T any](ctx context.Context, c ports.CacheService, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	b, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(b, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes v as JSON and stores it. Values that cannot be encoded are not
// cached.
func Set[T any](ctx context.Context, c ports.CacheService, key string, v T, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, b, ttl)
}

// SetFor is Set with the TTL configured for class.
func SetFor[T any](ctx context.Context, c ports.CacheService, key string, v T, class cache.DataClass) {
	if c == nil {
		return
	}
	Set(ctx, c, key, v, c.Policy().TTLFor(class))
}

// WithCache returns the cached value for key, or calls fetch, caches its
// result for ttl and returns it. Fetch errors are returned unchanged and
// nothing is cached for them.
//
// There is no single-flight de-duplication: concurrent callers missing on the
// same cold key may each call fetch. Use WithCacheCoalesced where duplicate
// work is too expensive.
func WithCache[T any](ctx context.Context, c ports.CacheService, key string, ttl time.Duration, fetch Fetcher[T]) (T, error) {
	if v, ok := Get[T](ctx, c, key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	Set(ctx, c, key, v, ttl)
	return v, nil
}

// CoalescingLoader shares one in-flight load per key between concurrent
// callers in this process.
type CoalescingLoader struct {
	group singleflight.Group
}

// NewCoalescingLoader creates an empty loader.
func NewCoalescingLoader() *CoalescingLoader {
	return &CoalescingLoader{}
}

// WithCacheCoalesced behaves like WithCache, except that concurrent misses on
// the same key within this process wait for a single fetch. Every waiter
// receives the fetch result, including its error, even if its own context
// differs from the one that started the load.
func WithCacheCoalesced[T any](ctx context.Context, c ports.CacheService, l *CoalescingLoader, key string, ttl time.Duration, fetch Fetcher[T]) (T, error) {
	if l == nil {
		return WithCache(ctx, c, key, ttl, fetch)
	}
	if v, ok := Get[T](ctx, c, key); ok {
		return v, nil
	}
	res, err, _ := l.group.Do(key, func() (any, error) {
		// another caller may have filled the cache while we queued
		if v, ok := Get[T](ctx, c, key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		Set(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected type %T from coalesced load", res)
	}
	return v, nil
}
