// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

const defaultRequestTimeout = 30 * time.Second

// responder carries the validator and the response helpers shared by every handler
type responder struct {
	validator *validator.Validate
}

func newResponder() responder {
	return responder{validator: validator.New()}
}

func (r responder) SuccessResponse(c fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (r responder) ErrorResponse(c fiber.Ctx, statusCode int, message string, errs []string) error {
	return c.Status(statusCode).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
		Errors:  errs,
	})
}

// validate writes a 400 response and reports false when req fails its struct tags
func (r responder) validate(c fiber.Ctx, req any) (bool, error) {
	err := r.validator.Struct(req)
	if err == nil {
		return true, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false, r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", []string{err.Error()})
	}
	var validationErrors []string
	for _, err := range verrs {
		validationErrors = append(validationErrors, getValidationErrorMessage(err))
	}
	return false, r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", validationErrors)
}

// businessError maps known flow errors to a response; anything else goes to the global error handler
func (r responder) businessError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsInvalidInput(err):
		return r.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	case businessflow.IsCustomerNotFound(err):
		return r.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", nil)
	case businessflow.IsCampaignNotFound(err):
		return r.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	default:
		return err
	}
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestid.FromContext(c))
	return metadata
}

func requestContext(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), timeout)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
