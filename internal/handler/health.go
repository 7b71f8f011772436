package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/deppfellow/crashmap/internal/middleware"
	"github.com/deppfellow/crashmap/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var errRedisNotConnected = errors.New("redis is configured but not connected")

// PingFunc probes one dependency.
type PingFunc func(ctx context.Context) error

// HealthHandler reports whether the service and its dependencies are
// reachable. PostgreSQL is required: a failed ping answers 503. Redis only
// carries collision events, so a failed Redis ping marks the service
// degraded and still answers 200.
type HealthHandler struct {
	Handler
	pingDatabase PingFunc
	pingRedis    PingFunc
	now          func() time.Time
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler: NewHandler(s),
		now:     time.Now,
	}

	if s.DB != nil {
		h.pingDatabase = s.DB.Pool.Ping
	}

	switch {
	case s.Redis != nil:
		h.pingRedis = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	case s.Config.Redis.Enabled():
		h.pingRedis = func(context.Context) error {
			return errRedisNotConnected
		}
	}

	return h
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := h.now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	healthCfg := h.server.Config.Observability.HealthChecks

	response := healthResponse{
		Status:      StatusHealthy,
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult),
	}

	if healthCfg.Includes("database") && h.pingDatabase != nil {
		result := h.runCheck(c.Request().Context(), "database", h.pingDatabase, healthCfg.Timeout)
		response.Checks["database"] = result
		if result.Status != StatusHealthy {
			response.Status = StatusUnhealthy
		}
	}

	if healthCfg.Includes("redis") && h.pingRedis != nil {
		result := h.runCheck(c.Request().Context(), "redis", h.pingRedis, healthCfg.Timeout)
		response.Checks["redis"] = result
		if result.Status != StatusHealthy && response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
	}

	totalDuration := h.now().Sub(start)

	if response.Status == StatusUnhealthy {
		logger.Warn().Dur("total_duration", totalDuration).Msg("health check failed")
		h.recordFailure("overall", "overall_unhealthy", totalDuration, nil)
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Str("status", response.Status).
		Dur("total_duration", totalDuration).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) runCheck(parent context.Context, name string, ping PingFunc, timeout time.Duration) checkResult {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := h.now()
	err := ping(ctx)
	elapsed := h.now().Sub(start)

	if err != nil {
		h.server.Logger.Error().
			Err(err).
			Str("check", name).
			Dur("response_time", elapsed).
			Msg("health check failed")
		h.recordFailure(name, name+"_unhealthy", elapsed, err)

		return checkResult{
			Status:       StatusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return checkResult{Status: StatusHealthy, ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordFailure(check, errorType string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}

	attrs := map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       errorType,
		"response_time_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		attrs["error_message"] = err.Error()
	}
	app.RecordCustomEvent("HealthCheckError", attrs)
}
