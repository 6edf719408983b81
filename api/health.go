package api

import (
	"context"
	"time"

	"kucukaslan/tracker/buildinfo"
	"kucukaslan/tracker/domain"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports the configured dependencies only: an agent without
// ClickHouse does not fail its health check on ClickHouse.
type HealthHandler struct {
	checkers []domain.HealthChecker
	timeout  time.Duration
}

func NewHealthHandler(checkers ...domain.HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, timeout: 3 * time.Second}
}

// HealthCheck handles the /health endpoint
// @Summary Health check endpoint
// @Description Check the health status of the agent and its configured dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse "Service is healthy"
// @Success 503 {object} domain.HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	response := domain.HealthResponse{
		Timestamp: time.Now(),
		BuildInfo: buildinfo.GetInfo(),
		Services:  domain.ServiceHealthStatus{},
	}

	healthy := true
	for _, checker := range h.checkers {
		status := &domain.ServiceStatus{Status: "healthy"}
		if err := checker.HealthCheck(ctx); err != nil {
			healthy = false
			status = &domain.ServiceStatus{Status: "unhealthy", Message: err.Error()}
		}
		switch checker.Name() {
		case "clickhouse":
			response.Services.ClickHouse = status
		case "redis":
			response.Services.Redis = status
		case "sqlite":
			response.Services.SQLite = status
		}
	}

	if healthy {
		response.Status = "healthy"
		return c.Status(fiber.StatusOK).JSON(response)
	}

	response.Status = "unhealthy"
	return c.Status(fiber.StatusServiceUnavailable).JSON(response)
}
