package redis

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/ports"
)

const (
	defaultOpTimeout = 2 * time.Second
	defaultScanCount = 100
	deleteBatchSize  = 500
)

// Commands is the subset of the go-redis client the store relies on.
// *redis.Client satisfies it.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	DBSize(ctx context.Context) *redis.IntCmd
	FlushDB(ctx context.Context) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// StoreOptions tunes a RedisStore.
type StoreOptions struct {
	// Prefix namespaces every key; empty means the whole logical database.
	Prefix string
	// OpTimeout bounds each round-trip to Redis.
	OpTimeout time.Duration
	// ScanCount is the COUNT hint passed to SCAN.
	ScanCount int64
	// KeysLimit caps Keys results; 0 means uncapped.
	KeysLimit int
}

// RedisStore implements ports.CacheStore on top of Redis. Failures are logged
// and absorbed: reads become misses, writes are dropped.
type RedisStore struct {
	r         Commands
	prefix    string
	opTimeout time.Duration
	scanCount int64
	keysLimit int
	logger    *logrus.Logger
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(r Commands, opts StoreOptions, logger *logrus.Logger) *RedisStore {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.ScanCount <= 0 {
		opts.ScanCount = defaultScanCount
	}
	return &RedisStore{
		r:         r,
		prefix:    opts.Prefix,
		opTimeout: opts.OpTimeout,
		scanCount: opts.ScanCount,
		keysLimit: opts.KeysLimit,
		logger:    orDiscard(logger),
	}
}

func (s *RedisStore) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) stripped(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+":")
}

func (s *RedisStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *RedisStore) warn(err error, op, key string) {
	s.logger.WithError(err).WithFields(logrus.Fields{"op": op, "key": key}).Warn("redis cache operation failed")
}

// Get implements CacheStore.Get.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	val, err := s.r.Get(ctx, s.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.warn(err, "get", key)
		return nil, false
	}
	return val, true
}

// Set implements CacheStore.Set.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.r.Set(ctx, s.namespaced(key), value, ttl).Err(); err != nil {
		s.warn(err, "set", key)
	}
}

// Delete implements CacheStore.Delete.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.r.Del(ctx, s.namespaced(key)).Err(); err != nil {
		s.warn(err, "delete", key)
	}
}

// DeleteByPattern implements CacheStore.DeleteByPattern. Keys found before a
// scan failure are still deleted.
func (s *RedisStore) DeleteByPattern(ctx context.Context, pattern string) int {
	keys, err := s.scan(ctx, s.namespaced(pattern), 0)
	if err != nil {
		s.warn(err, "scan", pattern)
	}
	deleted := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		n, err := s.del(ctx, keys[start:end])
		if err != nil {
			s.warn(err, "delete_pattern", pattern)
			continue
		}
		deleted += int(n)
	}
	return deleted
}

func (s *RedisStore) del(ctx context.Context, keys []string) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.r.Del(ctx, keys...).Result()
}

// Keys implements CacheStore.Keys; results are capped at the configured limit.
func (s *RedisStore) Keys(ctx context.Context, pattern string) []string {
	keys, err := s.scan(ctx, s.namespaced(pattern), s.keysLimit)
	if err != nil {
		s.warn(err, "keys", pattern)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.stripped(k))
	}
	return out
}

// Count implements CacheStore.Count.
func (s *RedisStore) Count(ctx context.Context) int {
	if s.prefix == "" {
		opCtx, cancel := s.opContext(ctx)
		defer cancel()
		n, err := s.r.DBSize(opCtx).Result()
		if err != nil {
			s.warn(err, "dbsize", "")
			return 0
		}
		return int(n)
	}
	keys, err := s.scan(ctx, s.namespaced("*"), 0)
	if err != nil {
		s.warn(err, "count", "")
	}
	return len(keys)
}

// FlushAll implements CacheStore.FlushAll. With a prefix only the namespace
// is cleared, otherwise the whole logical database.
func (s *RedisStore) FlushAll(ctx context.Context) {
	if s.prefix != "" {
		s.DeleteByPattern(ctx, "*")
		return
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.r.FlushDB(ctx).Err(); err != nil {
		s.warn(err, "flush", "")
	}
}

// Ping reports whether Redis answers within the operation timeout.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.r.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.r.Close()
}

// scan walks SCAN MATCH pattern until the cursor wraps or limit keys were
// collected. Each round-trip gets its own timeout.
func (s *RedisStore) scan(ctx context.Context, match string, limit int) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.scanPage(ctx, cursor, match)
		if err != nil {
			return keys, err
		}
		for _, k := range page {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
			if limit > 0 && len(keys) >= limit {
				return keys, nil
			}
		}
		if next == 0 {
			return keys, nil
		}
		if err := ctx.Err(); err != nil {
			return keys, err
		}
		cursor = next
	}
}

func (s *RedisStore) scanPage(ctx context.Context, cursor uint64, match string) ([]string, uint64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.r.Scan(ctx, cursor, match, s.scanCount).Result()
}

func orDiscard(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	_ ports.CacheStore = (*RedisStore)(nil)
	_ Commands         = (*redis.Client)(nil)
)

