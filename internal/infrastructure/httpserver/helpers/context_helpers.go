package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// GetCompanyIDFromContext returns the company resolved by the company middleware.
func GetCompanyIDFromContext(c echo.Context) (string, error) {
	id, ok := GetCompanyIDRaw(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing company context")
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// QueryDate parses a required YYYY-MM-DD query parameter.
func QueryDate(c echo.Context, name, layout string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", name))
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s, expected %s", name, layout))
	}
	return t, nil
}
