package ports

import (
	"context"
	"errors"
	"time"

	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/domain/dashboard"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
)

// ErrNotFound is returned by read-model repositories when nothing matches.
var ErrNotFound = errors.New("not found")

// DashboardRepository computes dashboard aggregates from the primary datastore.
type DashboardRepository interface {
	Summary(ctx context.Context, companyID string) (*dashboard.Summary, error)
}

// ProductRepository lists a company's catalog.
type ProductRepository interface {
	List(ctx context.Context, companyID string, limit, offset int) ([]*catalog.Product, error)
	Count(ctx context.Context, companyID string) (int, error)
}

// ReportRepository aggregates sales per day over a date range.
type ReportRepository interface {
	DailySales(ctx context.Context, companyID string, from, to time.Time) ([]report.DailySales, error)
}

// DashboardService serves cached dashboard aggregates.
type DashboardService interface {
	GetSummary(ctx context.Context, companyID string) (*dashboard.Summary, error)
}

// CatalogService serves cached product listings.
type CatalogService interface {
	ListProducts(ctx context.Context, companyID string, limit, offset int) (*catalog.ProductPage, error)
	InvalidateProducts(ctx context.Context, companyID string) int
}

// ReportService serves cached, coalesced sales reports.
type ReportService interface {
	SalesReport(ctx context.Context, companyID string, from, to time.Time) (*report.SalesReport, error)
}
