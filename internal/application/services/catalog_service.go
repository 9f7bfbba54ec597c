package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/ports"
)

type CatalogService struct {
	repo   ports.ProductRepository
	cache  ports.CacheService
	logger *logrus.Logger
}

func NewCatalogService(repo ports.ProductRepository, cache ports.CacheService, logger *logrus.Logger) ports.CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// ProductListKey is the cache key for one page of a company's catalog.
func ProductListKey(companyID string, limit, offset int) string {
	return cache.BuildKey(string(cache.ClassProductList), companyID, limit, offset)
}

func (s *CatalogService) ListProducts(ctx context.Context, companyID string, limit, offset int) (*catalog.ProductPage, error) {
	limit, offset = catalog.NormalizePage(limit, offset)
	ttl := s.cache.Policy().TTLFor(cache.ClassProductList)
	page, err := WithCache(ctx, s.cache, ProductListKey(companyID, limit, offset), ttl, func(ctx context.Context) (*catalog.ProductPage, error) {
		total, err := s.repo.Count(ctx, companyID)
		if err != nil {
			return nil, err
		}
		items, err := s.repo.List(ctx, companyID, limit, offset)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*catalog.Product{}
		}
		return &catalog.ProductPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"company_id": companyID, "limit": limit, "offset": offset}).WithError(err).Error("failed to list products")
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return page, nil
}

// InvalidateProducts drops every cached page of the company's catalog.
func (s *CatalogService) InvalidateProducts(ctx context.Context, companyID string) int {
	n := s.cache.InvalidatePattern(ctx, cache.ResourcePattern(string(cache.ClassProductList), companyID))
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"company_id": companyID, "deleted": n}).Info("product listing cache invalidated")
	}
	return n
}
