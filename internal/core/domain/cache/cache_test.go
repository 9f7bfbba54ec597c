package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
)

func TestBuildKey_Deterministic(t *testing.T) {
	a := cache.BuildKey("product-list", "42", 20, 0, "active")
	b := cache.BuildKey("product-list", "42", 20, 0, "active")
	require.Equal(t, a, b)
	require.Equal(t, "product-list:company:42:20:0:active", a)
}

func TestBuildKey_OmitsTenantWhenEmpty(t *testing.T) {
	require.Equal(t, "catalog:page:3", cache.BuildKey("catalog", "", "page", 3))
	require.Equal(t, "dashboard:company:42", cache.BuildKey("dashboard", "42"))
}

func TestBuildKey_ParamFormatting(t *testing.T) {
	key := cache.BuildKey("report", "A", int64(7), uint8(2), 1.5, true)
	require.Equal(t, "report:company:A:7:2:1.5:true", key)
}

func TestBuildKey_DistinctResourcesDoNotCollide(t *testing.T) {
	require.NotEqual(t, cache.BuildKey("product", "A", 1), cache.BuildKey("product", "A", 11))
	require.NotEqual(t, cache.BuildKey("product", "A", 1), cache.BuildKey("product", "B", 1))
	require.NotEqual(t, cache.BuildKey("product", "A"), cache.BuildKey("customer", "A"))
}

func TestSanitizeParam(t *testing.T) {
	require.Equal(t, "a_b_c_d", cache.SanitizeParam("a:b*c d"))
	require.Equal(t, "plain", cache.SanitizeParam("plain"))
	require.True(t, cache.ValidTenantID("42"))
	require.False(t, cache.ValidTenantID("4:2"))
	require.False(t, cache.ValidTenantID(""))
	require.False(t, cache.ValidTenantID("*"))
}

func TestPatterns(t *testing.T) {
	require.Equal(t, "product:company:A:*", cache.ResourcePattern("product", "A"))
	require.Equal(t, []string{"*:company:A", "*:company:A:*"}, cache.TenantPatterns("A"))
}

func TestPolicy_KnownAndUnknownClasses(t *testing.T) {
	p := cache.DefaultPolicy()
	require.Equal(t, 2*time.Minute, p.TTLFor(cache.ClassDashboard))
	require.Equal(t, cache.DefaultTTL, p.TTLFor(cache.DataClass("no-such-class")))
	require.Equal(t, cache.DefaultTTL, p.Default())
	for _, c := range cache.Classes() {
		require.Positive(t, p.TTLFor(c))
	}
}

func TestPolicy_Overrides(t *testing.T) {
	p := cache.NewPolicy(map[cache.DataClass]time.Duration{
		cache.ClassReport:  time.Hour,
		cache.ClassDefault: time.Minute,
		cache.ClassCatalog: 0,
	})
	require.Equal(t, time.Hour, p.TTLFor(cache.ClassReport))
	require.Equal(t, time.Minute, p.TTLFor("unknown"))
	require.Equal(t, time.Hour, p.TTLFor(cache.ClassCatalog))

	// overrides never leak into the default table
	require.Equal(t, 30*time.Minute, cache.DefaultPolicy().TTLFor(cache.ClassReport))
}

func TestEntry_Live(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := cache.Entry{Value: []byte("x"), StoredAt: now, TTL: 60 * time.Second}
	require.True(t, e.Live(now.Add(59*time.Second)))
	require.False(t, e.Live(now.Add(60*time.Second)))
	require.False(t, e.Live(now.Add(61*time.Second)))
	require.True(t, cache.Entry{StoredAt: now}.Live(now.Add(24*time.Hour)))
}
