package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/erp-cache/configs"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// ErrNotConfigured is returned when no Redis URL is set.
var ErrNotConfigured = errors.New("redis url not configured")

// NewRedisClient creates a Redis client from the configured URL and verifies
// it with a PING bounded by the dial timeout.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func clientOptions(cfg *config.RedisConfig) (*redis.Options, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, ErrNotConfigured
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB >= 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	if cfg.IdleTimeout > 0 {
		opts.IdleTimeout = cfg.IdleTimeout
	}
	return opts, nil
}

// TryConnect returns a store backed by Redis, or nil when the URL is absent,
// malformed or the server does not answer. It never panics; the only side
// effect is the connection attempt itself.
func TryConnect(ctx context.Context, cfg *config.RedisConfig, logger *logrus.Logger) *RedisStore {
	logger = orDiscard(logger)
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			logger.Info("Redis not configured, cache will use in-process fallback")
		} else {
			logger.WithError(err).Warn("Redis unavailable, cache will use in-process fallback")
		}
		return nil
	}
	logger.WithField("db", client.Options().DB).Info("Connected to Redis cache store")
	return NewRedisStore(client, StoreOptions{
		Prefix:    cfg.KeyPrefix,
		OpTimeout: cfg.OpTimeout,
		ScanCount: cfg.ScanCount,
		KeysLimit: cfg.KeysLimit,
	}, logger)
}

// Connection adapts TryConnect to the port used by the cache manager and
// keeps the resulting store, so the caller can probe and close it later.
type Connection struct {
	cfg    *config.RedisConfig
	logger *logrus.Logger
	store  *RedisStore
}

func NewConnection(cfg *config.RedisConfig, logger *logrus.Logger) *Connection {
	return &Connection{cfg: cfg, logger: logger}
}

// Connect satisfies ports.CacheStoreConnector.
func (c *Connection) Connect(ctx context.Context) (ports.CacheStore, bool) {
	c.store = TryConnect(ctx, c.cfg, c.logger)
	if c.store == nil {
		return nil, false
	}
	return c.store, true
}

// Store returns the connected store, or nil when Connect has not succeeded.
func (c *Connection) Store() *RedisStore { return c.store }

