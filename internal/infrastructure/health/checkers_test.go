package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/erp-cache/internal/application/services"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	"github.com/avatarctic/erp-cache/internal/infrastructure/health"
	"github.com/avatarctic/erp-cache/internal/infrastructure/memory"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func remote(ctx context.Context) (ports.CacheStore, bool) { return memory.NewStore(), true }

func TestCacheHealthChecker_FallbackIsDegraded(t *testing.T) {
	m := impl.NewCacheManager(context.Background(), nil, memory.NewStore(), impl.CacheManagerOptions{}, nil)
	hc := health.NewCacheHealthChecker(m, nil)
	require.Equal(t, "cache", hc.Name())
	err := hc.Check(context.Background())
	require.ErrorIs(t, err, ports.ErrDegraded)
}

func TestCacheHealthChecker_Remote(t *testing.T) {
	m := impl.NewCacheManager(context.Background(), remote, memory.NewStore(), impl.CacheManagerOptions{}, nil)

	require.NoError(t, health.NewCacheHealthChecker(m, nil).Check(context.Background()))
	require.NoError(t, health.NewCacheHealthChecker(m, pingerFunc(func(ctx context.Context) error { return nil })).Check(context.Background()))

	err := health.NewCacheHealthChecker(m, pingerFunc(func(ctx context.Context) error { return errors.New("i/o timeout") })).Check(context.Background())
	require.ErrorIs(t, err, ports.ErrDegraded)
	require.Contains(t, err.Error(), "i/o timeout")
}
