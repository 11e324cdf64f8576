package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/middleware"
	"github.com/deppfellow/go-marketplace/internal/server"
)

const healthCheckTimeout = 5 * time.Second

// dependencyCheck pings one backing service. A failing optional check is
// reported but keeps the service healthy.
type dependencyCheck struct {
	name     string
	required bool
	ping     func(ctx context.Context) error
}

type HealthHandler struct {
	Handler
	checks []dependencyCheck
}

// NewHealthHandler checks PostgreSQL (required) and Redis (optional: only
// notification delivery depends on it).
func NewHealthHandler(s *server.Server) *HealthHandler {
	checks := []dependencyCheck{{
		name:     "database",
		required: true,
		ping:     func(ctx context.Context) error { return s.DB.Pool.Ping(ctx) },
	}}
	if s.Redis != nil {
		checks = append(checks, dependencyCheck{
			name: "redis",
			ping: func(ctx context.Context) error { return s.Redis.Ping(ctx).Err() },
		})
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
	}
}

// CheckHealth answers 200 when every required dependency responds and 503
// otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	checks := make(map[string]interface{}, len(h.checks))
	isHealthy := true

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		checkStart := time.Now()
		err := check.ping(ctx)
		cancel()

		result := map[string]interface{}{
			"status":        "healthy",
			"response_time": time.Since(checkStart).String(),
		}

		if err != nil {
			result["status"] = "unhealthy"
			result["error"] = err.Error()
			if check.required {
				isHealthy = false
			}

			logger.Error().
				Err(err).
				Str("check", check.name).
				Dur("response_time", time.Since(checkStart)).
				Msg("health check failed")

			h.recordFailure(check.name, err, time.Since(checkStart))
		}

		checks[check.name] = result
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	status := http.StatusOK
	if !isHealthy {
		response["status"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Bool("healthy", isHealthy).
		Msg("health check completed")

	if err := c.JSON(status, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) recordFailure(check string, err error, elapsed time.Duration) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
			"check_type":       check,
			"operation":        "health_check",
			"error_type":       check + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}
}
