package httpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/erp-cache/internal/application/services"
	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/domain/dashboard"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	erphttp "github.com/avatarctic/erp-cache/internal/infrastructure/httpserver"
	"github.com/avatarctic/erp-cache/internal/infrastructure/memory"
	"github.com/avatarctic/erp-cache/test/mocks"
)

func newCache() *services.CacheManager {
	return services.NewCacheManager(context.Background(), nil, memory.NewStore(), services.CacheManagerOptions{Policy: cache.DefaultPolicy()}, nil)
}

func newServer(t *testing.T, deps erphttp.ServerDeps) *erphttp.Server {
	t.Helper()
	if deps.CacheService == nil {
		deps.CacheService = newCache()
	}
	if deps.DashboardService == nil {
		deps.DashboardService = &mocks.DashboardServiceMock{}
	}
	if deps.CatalogService == nil {
		deps.CatalogService = &mocks.CatalogServiceMock{}
	}
	if deps.ReportService == nil {
		deps.ReportService = &mocks.ReportServiceMock{}
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return erphttp.NewServer(&erphttp.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second}, logger, deps)
}

func do(t *testing.T, srv *erphttp.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestDashboardEndpoint(t *testing.T) {
	var gotCompany string
	dash := &mocks.DashboardServiceMock{GetSummaryFn: func(ctx context.Context, companyID string) (*dashboard.Summary, error) {
		gotCompany = companyID
		return &dashboard.Summary{CompanyID: companyID, SalesCount: 3}, nil
	}}
	srv := newServer(t, erphttp.ServerDeps{DashboardService: dash})

	rec := do(t, srv, http.MethodGet, "/api/v1/companies/42/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "42", gotCompany)

	var out dashboard.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 3, out.SalesCount)
}

func TestCompanyIDWithReservedCharactersRejected(t *testing.T) {
	called := false
	dash := &mocks.DashboardServiceMock{GetSummaryFn: func(ctx context.Context, companyID string) (*dashboard.Summary, error) {
		called = true
		return &dashboard.Summary{}, nil
	}}
	srv := newServer(t, erphttp.ServerDeps{DashboardService: dash})

	for _, id := range []string{"4*2", "a:b"} {
		rec := do(t, srv, http.MethodGet, "/api/v1/companies/"+id+"/dashboard", "")
		require.Equal(t, http.StatusBadRequest, rec.Code, id)
	}
	require.False(t, called)
}

func TestProductsEndpointPassesPaging(t *testing.T) {
	var gotLimit, gotOffset int
	cat := &mocks.CatalogServiceMock{ListProductsFn: func(ctx context.Context, companyID string, limit, offset int) (*catalog.ProductPage, error) {
		gotLimit, gotOffset = limit, offset
		return &catalog.ProductPage{Items: []*catalog.Product{}, Limit: limit, Offset: offset}, nil
	}}
	srv := newServer(t, erphttp.ServerDeps{CatalogService: cat})

	rec := do(t, srv, http.MethodGet, "/api/v1/companies/7/products?limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, gotLimit)
	require.Equal(t, 10, gotOffset)

	rec = do(t, srv, http.MethodGet, "/api/v1/companies/7/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, catalog.DefaultPageSize, gotLimit)

	rec = do(t, srv, http.MethodGet, "/api/v1/companies/7/products?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesReportEndpoint(t *testing.T) {
	rep := &mocks.ReportServiceMock{SalesReportFn: func(ctx context.Context, companyID string, from, to time.Time) (*report.SalesReport, error) {
		if err := report.ValidateRange(from, to); err != nil {
			return nil, fmt.Errorf("failed to build sales report: %w", err)
		}
		return report.NewSalesReport(companyID, from, to, []report.DailySales{{Day: from, Count: 2, Total: 10}}), nil
	}}
	srv := newServer(t, erphttp.ServerDeps{ReportService: rep})

	rec := do(t, srv, http.MethodGet, "/api/v1/companies/9/reports/sales?from=2024-01-01&to=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out report.SalesReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 2, out.Count)

	rec = do(t, srv, http.MethodGet, "/api/v1/companies/9/reports/sales?from=2024-02-01&to=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/companies/9/reports/sales?from=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/companies/9/reports/sales?from=01/01/2024&to=2024-01-31", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadErrorsMapToStatus(t *testing.T) {
	dash := &mocks.DashboardServiceMock{GetSummaryFn: func(ctx context.Context, companyID string) (*dashboard.Summary, error) {
		if companyID == "missing" {
			return nil, fmt.Errorf("failed to load dashboard summary: %w", ports.ErrNotFound)
		}
		return nil, fmt.Errorf("db down")
	}}
	srv := newServer(t, erphttp.ServerDeps{DashboardService: dash})

	require.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/v1/companies/missing/dashboard", "").Code)
	require.Equal(t, http.StatusInternalServerError, do(t, srv, http.MethodGet, "/api/v1/companies/1/dashboard", "").Code)
}

func TestCacheAdminEndpoints(t *testing.T) {
	ctx := context.Background()
	c := newCache()
	c.Set(ctx, "dashboard:company:1", []byte(`1`), 0)
	c.Set(ctx, "product-list:company:1:20:0", []byte(`2`), 0)
	c.Set(ctx, "dashboard:company:2", []byte(`3`), 0)
	c.Set(ctx, "report:company:2:sales", []byte(`4`), 0)
	srv := newServer(t, erphttp.ServerDeps{CacheService: c})

	rec := do(t, srv, http.MethodGet, "/api/v1/admin/cache/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 4, stats.KeyCount)
	require.Equal(t, cache.BackendFallback, stats.Backend)

	rec = do(t, srv, http.MethodDelete, "/api/v1/admin/cache/keys/dashboard:company:2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := c.Get(ctx, "dashboard:company:2")
	require.False(t, ok)

	rec = do(t, srv, http.MethodDelete, "/api/v1/admin/cache/companies/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":2}`, rec.Body.String())
	_, ok = c.Get(ctx, "report:company:2:sales")
	require.True(t, ok)

	rec = do(t, srv, http.MethodPost, "/api/v1/admin/cache/invalidate", `{"pattern":"report:*"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/v1/admin/cache/invalidate", `{"pattern":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c.Set(ctx, "catalog:company:3", []byte(`5`), 0)
	rec = do(t, srv, http.MethodPost, "/api/v1/admin/cache/flush", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, c.Stats(ctx).KeyCount)
}

func TestInvalidateKeyAcceptsEncodedKey(t *testing.T) {
	ctx := context.Background()
	c := newCache()
	c.Set(ctx, "report:company:2:sales", []byte(`1`), 0)
	c.Set(ctx, "report:company:3:sales", []byte(`2`), 0)
	srv := newServer(t, erphttp.ServerDeps{CacheService: c})

	rec := do(t, srv, http.MethodDelete, "/api/v1/admin/cache/keys/report%3Acompany%3A2%3Asales", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := c.Get(ctx, "report:company:2:sales")
	require.False(t, ok)
	_, ok = c.Get(ctx, "report:company:3:sales")
	require.True(t, ok)

	// a malformed escape cannot go through url.Parse, so set the raw path directly
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.URL.Path = "/api/v1/admin/cache/keys/bad%zzkey"
	req.URL.RawPath = req.URL.Path
	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadThroughAndInvalidationOverHTTP(t *testing.T) {
	c := newCache()
	calls := 0
	repo := &mocks.DashboardRepositoryMock{SummaryFn: func(ctx context.Context, companyID string) (*dashboard.Summary, error) {
		calls++
		return &dashboard.Summary{CompanyID: companyID, SalesCount: calls}, nil
	}}
	srv := newServer(t, erphttp.ServerDeps{
		CacheService:     c,
		DashboardService: services.NewDashboardService(repo, c, nil),
	})

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/companies/5/dashboard", "").Code)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/companies/5/dashboard", "").Code)
	require.Equal(t, 1, calls)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodDelete, "/api/v1/admin/cache/companies/5", "").Code)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/companies/5/dashboard", "").Code)
	require.Equal(t, 2, calls)
}

func TestInvalidateProductsEndpoint(t *testing.T) {
	var got string
	cat := &mocks.CatalogServiceMock{InvalidateProductsFn: func(ctx context.Context, companyID string) int {
		got = companyID
		return 3
	}}
	srv := newServer(t, erphttp.ServerDeps{CatalogService: cat})

	rec := do(t, srv, http.MethodDelete, "/api/v1/admin/cache/companies/11/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":3}`, rec.Body.String())
	require.Equal(t, "11", got)
}

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   int
		status string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"degraded", fmt.Errorf("%w: fallback", ports.ErrDegraded), http.StatusOK, "degraded"},
		{"down", fmt.Errorf("connection refused"), http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checker := &mocks.HealthCheckerMock{NameValue: "dep", CheckFn: func(ctx context.Context) error { return tc.err }}
			srv := newServer(t, erphttp.ServerDeps{HealthCheckers: []ports.HealthChecker{checker}})

			rec := do(t, srv, http.MethodGet, "/health", "")
			require.Equal(t, tc.code, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.status, body["status"])
			require.Equal(t, string(cache.BackendFallback), body["cache_backend"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, erphttp.ServerDeps{})
	do(t, srv, http.MethodGet, "/api/v1/admin/cache/stats", "")

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}
