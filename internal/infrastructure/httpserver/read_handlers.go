package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/erp-cache/internal/core/domain/catalog"
	"github.com/avatarctic/erp-cache/internal/core/domain/report"
	"github.com/avatarctic/erp-cache/internal/core/ports"
	"github.com/avatarctic/erp-cache/internal/infrastructure/httpserver/helpers"
)

func (s *Server) getDashboard(c echo.Context) error {
	companyID, err := helpers.GetCompanyIDFromContext(c)
	if err != nil {
		return err
	}
	summary, err := s.dashboardSvc.GetSummary(c.Request().Context(), companyID)
	if err != nil {
		return readError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) listProducts(c echo.Context) error {
	companyID, err := helpers.GetCompanyIDFromContext(c)
	if err != nil {
		return err
	}
	limit, err := helpers.QueryInt(c, "limit", catalog.DefaultPageSize)
	if err != nil {
		return err
	}
	offset, err := helpers.QueryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	page, err := s.catalogSvc.ListProducts(c.Request().Context(), companyID, limit, offset)
	if err != nil {
		return readError(err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) getSalesReport(c echo.Context) error {
	companyID, err := helpers.GetCompanyIDFromContext(c)
	if err != nil {
		return err
	}
	from, err := helpers.QueryDate(c, "from", report.DateLayout)
	if err != nil {
		return err
	}
	to, err := helpers.QueryDate(c, "to", report.DateLayout)
	if err != nil {
		return err
	}
	r, err := s.reportSvc.SalesReport(c.Request().Context(), companyID, from, to)
	if err != nil {
		return readError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func readError(err error) error {
	switch {
	case errors.Is(err, report.ErrInvalidRange), errors.Is(err, report.ErrRangeTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
