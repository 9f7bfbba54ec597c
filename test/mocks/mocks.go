package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/domain/dashboard"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// CacheStoreMock is a lightweight mock for CacheStore. Unset functions behave
// like an empty store.
type CacheStoreMock struct {
	GetFn             func(ctx context.Context, key string) ([]byte, bool)
	SetFn             func(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeleteFn          func(ctx context.Context, key string)
	DeleteByPatternFn func(ctx context.Context, pattern string) int
	KeysFn            func(ctx context.Context, pattern string) []string
	CountFn           func(ctx context.Context) int
	FlushAllFn        func(ctx context.Context)
}

func (m *CacheStoreMock) Get(ctx context.Context, key string) ([]byte, bool) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false
}
func (m *CacheStoreMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if m.SetFn != nil {
		m.SetFn(ctx, key, value, ttl)
	}
}
func (m *CacheStoreMock) Delete(ctx context.Context, key string) {
	if m.DeleteFn != nil {
		m.DeleteFn(ctx, key)
	}
}
func (m *CacheStoreMock) DeleteByPattern(ctx context.Context, pattern string) int {
	if m.DeleteByPatternFn != nil {
		return m.DeleteByPatternFn(ctx, pattern)
	}
	return 0
}
func (m *CacheStoreMock) Keys(ctx context.Context, pattern string) []string {
	if m.KeysFn != nil {
		return m.KeysFn(ctx, pattern)
	}
	return []string{}
}
func (m *CacheStoreMock) Count(ctx context.Context) int {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0
}
func (m *CacheStoreMock) FlushAll(ctx context.Context) {
	if m.FlushAllFn != nil {
		m.FlushAllFn(ctx)
	}
}

// DashboardRepositoryMock is a lightweight mock for DashboardRepository
type DashboardRepositoryMock struct {
	SummaryFn func(ctx context.Context, companyID string) (*dashboard.Summary, error)
}

func (m *DashboardRepositoryMock) Summary(ctx context.Context, companyID string) (*dashboard.Summary, error) {
	if m.SummaryFn != nil {
		return m.SummaryFn(ctx, companyID)
	}
	return nil, ports.ErrNotFound
}

// ProductRepositoryMock is a lightweight mock for ProductRepository
type ProductRepositoryMock struct {
	ListFn  func(ctx context.Context, companyID string, limit, offset int) ([]*catalog.Product, error)
	CountFn func(ctx context.Context, companyID string) (int, error)
}

func (m *ProductRepositoryMock) List(ctx context.Context, companyID string, limit, offset int) ([]*catalog.Product, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, companyID, limit, offset)
	}
	return []*catalog.Product{}, nil
}
func (m *ProductRepositoryMock) Count(ctx context.Context, companyID string) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, companyID)
	}
	return 0, nil
}

// ReportRepositoryMock is a lightweight mock for ReportRepository
type ReportRepositoryMock struct {
	DailySalesFn func(ctx context.Context, companyID string, from, to time.Time) ([]report.DailySales, error)
}

func (m *ReportRepositoryMock) DailySales(ctx context.Context, companyID string, from, to time.Time) ([]report.DailySales, error) {
	if m.DailySalesFn != nil {
		return m.DailySalesFn(ctx, companyID, from, to)
	}
	return []report.DailySales{}, nil
}

// DashboardServiceMock is a lightweight mock for DashboardService
type DashboardServiceMock struct {
	GetSummaryFn func(ctx context.Context, companyID string) (*dashboard.Summary, error)
}

func (m *DashboardServiceMock) GetSummary(ctx context.Context, companyID string) (*dashboard.Summary, error) {
	if m.GetSummaryFn != nil {
		return m.GetSummaryFn(ctx, companyID)
	}
	return nil, fmt.Errorf("not implemented")
}

// CatalogServiceMock is a lightweight mock for CatalogService
type CatalogServiceMock struct {
	ListProductsFn       func(ctx context.Context, companyID string, limit, offset int) (*catalog.ProductPage, error)
	InvalidateProductsFn func(ctx context.Context, companyID string) int
}

func (m *CatalogServiceMock) ListProducts(ctx context.Context, companyID string, limit, offset int) (*catalog.ProductPage, error) {
	if m.ListProductsFn != nil {
		return m.ListProductsFn(ctx, companyID, limit, offset)
	}
	return &catalog.ProductPage{Items: []*catalog.Product{}, Limit: limit, Offset: offset}, nil
}
func (m *CatalogServiceMock) InvalidateProducts(ctx context.Context, companyID string) int {
	if m.InvalidateProductsFn != nil {
		return m.InvalidateProductsFn(ctx, companyID)
	}
	return 0
}

// ReportServiceMock is a lightweight mock for ReportService
type ReportServiceMock struct {
	SalesReportFn func(ctx context.Context, companyID string, from, to time.Time) (*report.SalesReport, error)
}

func (m *ReportServiceMock) SalesReport(ctx context.Context, companyID string, from, to time.Time) (*report.SalesReport, error) {
	if m.SalesReportFn != nil {
		return m.SalesReportFn(ctx, companyID, from, to)
	}
	return report.NewSalesReport(companyID, from, to, nil), nil
}

// HealthCheckerMock is a lightweight mock for HealthChecker
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

var (
	_ ports.CacheStore          = (*CacheStoreMock)(nil)
	_ ports.DashboardRepository = (*DashboardRepositoryMock)(nil)
	_ ports.ProductRepository   = (*ProductRepositoryMock)(nil)
	_ ports.ReportRepository    = (*ReportRepositoryMock)(nil)
	_ ports.DashboardService    = (*DashboardServiceMock)(nil)
	_ ports.CatalogService      = (*CatalogServiceMock)(nil)
	_ ports.ReportService       = (*ReportServiceMock)(nil)
	_ ports.HealthChecker       = (*HealthCheckerMock)(nil)
)
