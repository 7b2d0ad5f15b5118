package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-todo/internal/config"
	"github.com/deppfellow/go-todo/internal/middleware"
	"github.com/deppfellow/go-todo/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health is the liveness probe. It touches no dependency and always
// answers {"status":"healthy","version":"1.0.0"}.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  statusHealthy,
		Version: config.Version,
	})
}

type CheckResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type StatusResponse struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]CheckResult `json:"checks"`
}

// CheckHealth is the readiness probe. It runs every enabled dependency
// check and answers 503 if any of them fails.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	obs := h.server.Config.Observability

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := StatusResponse{
		Status:      statusHealthy,
		Version:     config.Version,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]CheckResult{},
	}

	if obs.HealthCheckEnabled("database") {
		ctx, cancel := context.WithTimeout(c.Request().Context(), obs.HealthChecks.Timeout)
		defer cancel()

		dbStart := time.Now()
		err := h.server.DB.Pool.Ping(ctx)
		result := CheckResult{
			Status:       statusHealthy,
			ResponseTime: time.Since(dbStart).String(),
		}

		if err != nil {
			result.Status = statusUnhealthy
			result.Error = err.Error()
			response.Status = statusUnhealthy

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(dbStart)).
				Msg("database health check failed")

			h.recordFailure("database", time.Since(dbStart), err)
		}

		response.Checks["database"] = result
	}

	if response.Status != statusHealthy {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
