package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/domain/dashboard"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	"github.com/avatarctic/erp-cache/internal/infrastructure/db"
)

// DashboardRepository computes dashboard aggregates with one round-trip.
type DashboardRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewDashboardRepository(database *db.Database, logger *logrus.Logger) ports.DashboardRepository {
	return &DashboardRepository{db: database, logger: logger}
}

// Summary returns ports.ErrNotFound when the company does not exist.
func (r *DashboardRepository) Summary(ctx context.Context, companyID string) (*dashboard.Summary, error) {
	query := `
		SELECT c.id AS company_id,
			(SELECT COUNT(*) FROM sales WHERE company_id = $1) AS sales_count,
			(SELECT COALESCE(SUM(total), 0) FROM sales WHERE company_id = $1) AS sales_total,
			(SELECT COUNT(*) FROM invoices WHERE company_id = $1 AND status = 'open') AS open_invoices,
			(SELECT COUNT(*) FROM products WHERE company_id = $1 AND stock <= min_stock) AS low_stock_products,
			NOW() AS generated_at
		FROM companies c
		WHERE c.id = $1`

	var s dashboard.Summary
	if err := r.db.DB.GetContext(ctx, &s, query, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithField("company_id", companyID).WithError(err).Error("dashboard summary query failed")
		}
		return nil, fmt.Errorf("failed to compute dashboard summary: %w", err)
	}
	return &s, nil
}

// ProductRepository reads the catalog.
type ProductRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewProductRepository(database *db.Database, logger *logrus.Logger) ports.ProductRepository {
	return &ProductRepository{db: database, logger: logger}
}

func (r *ProductRepository) List(ctx context.Context, companyID string, limit, offset int) ([]*catalog.Product, error) {
	query := `
		SELECT id, company_id, sku, name, price, stock, updated_at
		FROM products
		WHERE company_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`

	products := []*catalog.Product{}
	if err := r.db.DB.SelectContext(ctx, &products, query, companyID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Count(ctx context.Context, companyID string) (int, error) {
	var count int
	if err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM products WHERE company_id = $1`, companyID); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ReportRepository aggregates sales for reports.
type ReportRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewReportRepository(database *db.Database, logger *logrus.Logger) ports.ReportRepository {
	return &ReportRepository{db: database, logger: logger}
}

// DailySales groups sales per day for the inclusive date range [from, to].
func (r *ReportRepository) DailySales(ctx context.Context, companyID string, from, to time.Time) ([]report.DailySales, error) {
	query := `
		SELECT date_trunc('day', sold_at) AS day, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total
		FROM sales
		WHERE company_id = $1 AND sold_at >= $2 AND sold_at < $3
		GROUP BY 1
		ORDER BY 1`

	days := []report.DailySales{}
	err := r.db.DB.SelectContext(ctx, &days, query, companyID, from, to.AddDate(0, 0, 1))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"company_id": companyID, "from": from, "to": to}).WithError(err).Error("daily sales query failed")
		}
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	return days, nil
}
