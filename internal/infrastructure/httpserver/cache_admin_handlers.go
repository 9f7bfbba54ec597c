package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/erp-cache/internal/infrastructure/httpserver/helpers"
)

type invalidatePatternRequest struct {
	Pattern string `json:"pattern"`
}

func (s *Server) cacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cache.Stats(c.Request().Context()))
}

func (s *Server) invalidateKey(c echo.Context) error {
	// echo matches on the raw path, so an encoded ':' arrives as "%3A"
	key, err := url.PathUnescape(c.Param("key"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid key encoding")
	}
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "key is required")
	}
	s.cache.Invalidate(c.Request().Context(), key)
	s.logAdmin("invalidate_key", key, 1)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) invalidatePattern(c echo.Context) error {
	var req invalidatePatternRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Pattern = strings.TrimSpace(req.Pattern)
	if req.Pattern == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pattern is required")
	}
	n := s.cache.InvalidatePattern(c.Request().Context(), req.Pattern)
	s.logAdmin("invalidate_pattern", req.Pattern, n)
	return c.JSON(http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) invalidateCompany(c echo.Context) error {
	companyID, err := helpers.GetCompanyIDFromContext(c)
	if err != nil {
		return err
	}
	n := s.cache.InvalidateCompany(c.Request().Context(), companyID)
	s.logAdmin("invalidate_company", companyID, n)
	return c.JSON(http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) invalidateProducts(c echo.Context) error {
	companyID, err := helpers.GetCompanyIDFromContext(c)
	if err != nil {
		return err
	}
	n := s.catalogSvc.InvalidateProducts(c.Request().Context(), companyID)
	s.logAdmin("invalidate_products", companyID, n)
	return c.JSON(http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) flushCache(c echo.Context) error {
	s.cache.Flush(c.Request().Context())
	s.logAdmin("flush", "*", 0)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) logAdmin(action, target string, deleted int) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"action":  action,
		"target":  target,
		"deleted": deleted,
		"backend": s.cache.Backend(),
	}).Info("cache admin operation")
}
