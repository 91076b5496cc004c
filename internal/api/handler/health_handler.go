package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/ports"
)

// HealthHandler serves the liveness and readiness checks.
// Readiness pings every registered dependency.
// Dependency errors are logged, never returned.
type HealthHandler struct {
	deps   map[string]ports.Pinger
	logger zerolog.Logger
}

func NewHealthHandler(deps map[string]ports.Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{deps: deps, logger: logger}
}

type dependencyStatus struct {
	Status string `json:"status"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			deps[name] = dependencyStatus{Status: "unhealthy"}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, readinessResponse{Status: status, Dependencies: deps})
}
