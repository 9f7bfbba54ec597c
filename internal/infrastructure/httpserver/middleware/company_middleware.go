package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/erp-cache/internal/core/domain/cache"
	"github.com/avatarctic/erp-cache/internal/infrastructure/httpserver/helpers"
)

// CompanyParam is the route parameter carrying the tenant identifier.
const CompanyParam = "company_id"

type CompanyMiddleware struct {
	logger *logrus.Logger
}

func NewCompanyMiddleware(logger *logrus.Logger) *CompanyMiddleware {
	return &CompanyMiddleware{logger: logger}
}

// ResolveCompany validates the :company_id route parameter and stores it in
// the context. IDs containing key delimiters or glob characters are rejected
// so they can be used verbatim in cache keys and invalidation patterns.
func (m *CompanyMiddleware) ResolveCompany() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Param(CompanyParam)
			if !cache.ValidTenantID(id) {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"company_id": id, "path": c.Path()}).Debug("rejected company id")
				}
				return echo.NewHTTPError(http.StatusBadRequest, "invalid company id")
			}
			helpers.SetCompanyID(c, id)
			return next(c)
		}
	}
}
