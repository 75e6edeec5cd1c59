package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CommunicationHandler handles communication log HTTP requests
type CommunicationHandler struct {
	responder
	communicationFlow businessflow.CommunicationFlow
}

// NewCommunicationHandler creates a new communication handler
func NewCommunicationHandler(communicationFlow businessflow.CommunicationFlow) *CommunicationHandler {
	return &CommunicationHandler{
		responder:         newResponder(),
		communicationFlow: communicationFlow,
	}
}

// ListCommunications returns log entries, optionally for one campaign
// @Summary List Communications
// @Tags Communications
// @Produce json
// @Param campaign_id query string false "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Communication}
// @Router /api/communications [get]
func (h *CommunicationHandler) ListCommunications(c fiber.Ctx) error {
	var req dto.ListCommunicationsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	entries, err := h.communicationFlow.ListCommunications(ctx, &req)
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, entries)
}

// LogCommunication appends a log entry
// @Summary Log Communication
// @Tags Communications
// @Accept json
// @Produce json
// @Param request body dto.LogCommunicationRequest true "Log entry"
// @Success 201 {object} dto.APIResponse{data=models.Communication}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Campaign or customer not found"
// @Router /api/communications [post]
func (h *CommunicationHandler) LogCommunication(c fiber.Ctx) error {
	var req dto.LogCommunicationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	entry, err := h.communicationFlow.LogCommunication(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, entry)
}
