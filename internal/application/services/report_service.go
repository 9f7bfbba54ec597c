package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// ReportService serves sales reports. Reports are the most expensive reads,
// so concurrent identical requests are coalesced into one query.
type ReportService struct {
	repo   ports.ReportRepository
	cache  ports.CacheService
	loader *CoalescingLoader
	logger *logrus.Logger
}

func NewReportService(repo ports.ReportRepository, cache ports.CacheService, loader *CoalescingLoader, logger *logrus.Logger) ports.ReportService {
	if loader == nil {
		loader = NewCoalescingLoader()
	}
	return &ReportService{repo: repo, cache: cache, loader: loader, logger: logger}
}

// SalesReportKey is the cache key for a company's sales report over [from, to].
func SalesReportKey(companyID string, from, to time.Time) string {
	return cache.BuildKey(string(cache.ClassReport), companyID, "sales", from.Format(report.DateLayout), to.Format(report.DateLayout))
}

func (s *ReportService) SalesReport(ctx context.Context, companyID string, from, to time.Time) (*report.SalesReport, error) {
	if err := report.ValidateRange(from, to); err != nil {
		return nil, err
	}
	ttl := s.cache.Policy().TTLFor(cache.ClassReport)
	r, err := WithCacheCoalesced(ctx, s.cache, s.loader, SalesReportKey(companyID, from, to), ttl, func(ctx context.Context) (*report.SalesReport, error) {
		days, err := s.repo.DailySales(ctx, companyID, from, to)
		if err != nil {
			return nil, err
		}
		return report.NewSalesReport(companyID, from, to, days), nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"company_id": companyID, "from": from, "to": to}).WithError(err).Error("failed to build sales report")
		}
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	return r, nil
}
