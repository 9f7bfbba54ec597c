package httpserver

import (
	customMiddleware "github.com/avatarctic/erp-cache/internal/infrastructure/httpserver/middleware"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	companies := api.Group("/companies/:"+customMiddleware.CompanyParam, s.middleware.Company.ResolveCompany())
	companies.GET("/dashboard", s.getDashboard)
	companies.GET("/products", s.listProducts)
	companies.GET("/reports/sales", s.getSalesReport)

	admin := api.Group("/admin/cache")
	admin.GET("/stats", s.cacheStats)
	admin.DELETE("/keys/:key", s.invalidateKey)
	admin.POST("/invalidate", s.invalidatePattern)
	adminCompany := admin.Group("/companies/:"+customMiddleware.CompanyParam, s.middleware.Company.ResolveCompany())
	adminCompany.DELETE("", s.invalidateCompany)
	adminCompany.DELETE("/products", s.invalidateProducts)
	admin.POST("/flush", s.flushCache)
}
