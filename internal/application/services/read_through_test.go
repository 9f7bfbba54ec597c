package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/erp-cache/internal/application/services"
	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
)

type summary struct {
	Sales int `json:"sales"`
}

func TestWithCache_SecondCallIsHit(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	calls := 0
	fetch := func(ctx context.Context) (summary, error) {
		calls++
		return summary{Sales: 10}, nil
	}

	first, err := impl.WithCache(ctx, m, "dashboard:company:1", time.Minute, fetch)
	require.NoError(t, err)
	second, err := impl.WithCache(ctx, m, "dashboard:company:1", time.Minute, fetch)
	require.NoError(t, err)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}

func TestWithCache_RefetchesAfterExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newFallbackManager(t)
	calls := 0
	fetch := func(ctx context.Context) (summary, error) {
		calls++
		return summary{Sales: calls}, nil
	}

	v, _ := impl.WithCache(ctx, m, "k", 10*time.Second, fetch)
	require.Equal(t, 1, v.Sales)
	clock.Advance(11 * time.Second)
	v, _ = impl.WithCache(ctx, m, "k", 10*time.Second, fetch)
	require.Equal(t, 2, v.Sales)
	require.Equal(t, 2, calls)
}

func TestWithCache_FetchErrorPropagatesAndIsNotCached(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	boom := errors.New("database down")

	_, err := impl.WithCache(ctx, m, "k", time.Minute, func(ctx context.Context) (summary, error) {
		return summary{}, boom
	})
	require.ErrorIs(t, err, boom)
	require.Same(t, boom, err)

	_, ok := m.Get(ctx, "k")
	require.False(t, ok)
}

func TestWithCache_UndecodablePayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	m.Set(ctx, "k", []byte("not json"), time.Minute)

	calls := 0
	v, err := impl.WithCache(ctx, m, "k", time.Minute, func(ctx context.Context) (summary, error) {
		calls++
		return summary{Sales: 3}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 3, v.Sales)
}

func TestWithCache_NilCacheAlwaysFetches(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context) (int, error) { calls++; return 7, nil }
	for i := 0; i < 2; i++ {
		v, err := impl.WithCache(ctx, nil, "k", time.Minute, fetch)
		require.NoError(t, err)
		require.Equal(t, 7, v)
	}
	require.Equal(t, 2, calls)
}

// Concurrent misses on one cold key are allowed to fetch more than once;
// WithCache does not de-duplicate in-flight loads.
func TestWithCache_ConcurrentColdMissMayFetchTwice(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)

	var calls atomic.Int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	fetch := func(ctx context.Context) (summary, error) {
		calls.Add(1)
		entered <- struct{}{}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		return summary{Sales: 1}, nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = impl.WithCache(ctx, m, "report:company:9", time.Minute, fetch)
		}(i)
	}
	<-entered
	<-entered
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, int32(2), calls.Load())
}

func TestWithCacheCoalesced_SharesOneFetch(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	loader := impl.NewCoalescingLoader()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (summary, error) {
		calls.Add(1)
		<-release
		return summary{Sales: 5}, nil
	}

	var wg sync.WaitGroup
	results := make([]summary, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = impl.WithCacheCoalesced(ctx, m, loader, "report:company:9", time.Minute, fetch)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for i, r := range results {
		require.NoError(t, errs[i])
		require.Equal(t, 5, r.Sales)
	}
}

func TestWithCacheCoalesced_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	loader := impl.NewCoalescingLoader()
	boom := errors.New("timeout")

	_, err := impl.WithCacheCoalesced(ctx, m, loader, "k", time.Minute, func(ctx context.Context) (summary, error) {
		return summary{}, boom
	})
	require.ErrorIs(t, err, boom)

	v, err := impl.WithCacheCoalesced(ctx, m, loader, "k", time.Minute, func(ctx context.Context) (summary, error) {
		return summary{Sales: 2}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, v.Sales)
}

func TestWithCacheCoalesced_NilLoaderFallsBack(t *testing.T) {
	ctx := context.Background()
	m, _ := newFallbackManager(t)
	v, err := impl.WithCacheCoalesced(ctx, m, nil, "k", time.Minute, func(ctx context.Context) (int, error) { return 4, nil })
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestSetFor_UsesClassTTL(t *testing.T) {
	ctx := context.Background()
	m, clock := newFallbackManager(t)
	impl.SetFor(ctx, m, "dashboard:company:1", summary{Sales: 1}, cache.ClassDashboard)

	clock.Advance(119 * time.Second)
	_, ok := impl.Get[summary](ctx, m, "dashboard:company:1")
	require.True(t, ok)
	clock.Advance(2 * time.Second)
	_, ok = impl.Get[summary](ctx, m, "dashboard:company:1")
	require.False(t, ok)
}
