package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/utils"
	"github.com/gofiber/fiber/v3"
)

// HealthHandler serves the liveness probe. It does not touch storage.
type HealthHandler struct {
	environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

// Health returns the service status
// @Summary Health Check
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   utils.UTCNowISO(),
		Environment: h.environment,
	})
}
