package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// EmailHandler exposes the mail transport
type EmailHandler struct {
	responder
	emailFlow businessflow.EmailFlow
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailFlow businessflow.EmailFlow) *EmailHandler {
	return &EmailHandler{
		responder: newResponder(),
		emailFlow: emailFlow,
	}
}

// SendEmail sends one ad-hoc email
// @Summary Send Email
// @Tags Email
// @Accept json
// @Produce json
// @Param request body dto.SendEmailRequest true "Message"
// @Success 200 {object} dto.SendEmailResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /api/email/send [post]
func (h *EmailHandler) SendEmail(c fiber.Ctx) error {
	var req dto.SendEmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	if req.Text == "" && req.HTML == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", []string{"Text or HTML is required"})
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	return sendResult(c, h.emailFlow.SendEmail(ctx, &req))
}

// SendTestEmail sends a fixed test message
// @Summary Send Test Email
// @Tags Email
// @Accept json
// @Produce json
// @Param request body dto.TestEmailRequest false "Optional recipient"
// @Success 200 {object} dto.SendEmailResponse
// @Router /api/email/test [post]
func (h *EmailHandler) SendTestEmail(c fiber.Ctx) error {
	var req dto.TestEmailRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
		}
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	return sendResult(c, h.emailFlow.SendTestEmail(ctx, &req))
}

// Status reports the mail transport configuration
// @Summary Email Status
// @Tags Email
// @Produce json
// @Success 200 {object} dto.EmailStatusResponse
// @Router /api/email/status [get]
func (h *EmailHandler) Status(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.emailFlow.Status())
}

// sendResult always answers 200; success carries the transport outcome
func sendResult(c fiber.Ctx, resp *dto.SendEmailResponse) error {
	return c.Status(fiber.StatusOK).JSON(resp)
}
