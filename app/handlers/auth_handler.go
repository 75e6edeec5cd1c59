package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler handles sign-in requests
type AuthHandler struct {
	responder
	authFlow businessflow.AuthFlow
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		responder: newResponder(),
		authFlow:  authFlow,
	}
}

// GoogleLogin verifies a Google ID token and records the user
// @Summary Google Login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google ID token"
// @Success 200 {object} dto.GoogleLoginResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.FailureResponse "Authentication failed"
// @Router /api/auth/google [post]
func (h *AuthHandler) GoogleLogin(c fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	resp, err := h.authFlow.GoogleLogin(ctx, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsIdentityVerificationFailed(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.FailureResponse{
				Success: false,
				Error:   "Authentication failed",
			})
		}
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Logout acknowledges a logout; no server-side session exists
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Logout successful",
	})
}
