package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/domain/dashboard"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

type DashboardService struct {
	repo   ports.DashboardRepository
	cache  ports.CacheService
	logger *logrus.Logger
}

func NewDashboardService(repo ports.DashboardRepository, cache ports.CacheService, logger *logrus.Logger) ports.DashboardService {
	return &DashboardService{repo: repo, cache: cache, logger: logger}
}

// DashboardKey is the cache key for a company's dashboard summary.
func DashboardKey(companyID string) string {
	return cache.BuildKey(string(cache.ClassDashboard), companyID)
}

func (s *DashboardService) GetSummary(ctx context.Context, companyID string) (*dashboard.Summary, error) {
	ttl := s.cache.Policy().TTLFor(cache.ClassDashboard)
	summary, err := WithCache(ctx, s.cache, DashboardKey(companyID), ttl, func(ctx context.Context) (*dashboard.Summary, error) {
		return s.repo.Summary(ctx, companyID)
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"company_id": companyID}).WithError(err).Error("failed to load dashboard summary")
		}
		return nil, fmt.Errorf("failed to load dashboard summary: %w", err)
	}
	return summary, nil
}
