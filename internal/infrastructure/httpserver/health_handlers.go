package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/erp-cache/internal/core/ports"
)

// Health check handler. A degraded dependency keeps the instance in rotation;
// any other failure reports 503.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "healthy"
	code := http.StatusOK
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		err := hc.Check(ctx)
		switch {
		case err == nil:
			deps[hc.Name()] = "healthy"
		case errors.Is(err, ports.ErrDegraded):
			deps[hc.Name()] = "degraded"
			if overall == "healthy" {
				overall = "degraded"
			}
		default:
			deps[hc.Name()] = "unhealthy"
			overall = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}
	health := map[string]interface{}{
		"status":       overall,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "1.0.0",
		"service":      "erp-cache",
		"dependencies": deps,
	}
	if s.cache != nil {
		health["cache_backend"] = s.cache.Backend()
	}
	return c.JSON(code, health)
}
