package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	responder
	customerFlow businessflow.CustomerFlow
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerFlow businessflow.CustomerFlow) *CustomerHandler {
	return &CustomerHandler{
		responder:    newResponder(),
		customerFlow: customerFlow,
	}
}

// ListCustomers returns every customer
// @Summary List Customers
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Customer}
// @Router /api/customers [get]
func (h *CustomerHandler) ListCustomers(c fiber.Ctx) error {
	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	customers, err := h.customerFlow.ListCustomers(ctx)
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, customers)
}

// GetCustomer returns one customer
// @Summary Get Customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.APIResponse{data=models.Customer}
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c fiber.Ctx) error {
	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	customer, err := h.customerFlow.GetCustomer(ctx, c.Params("id"))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, customer)
}

// UpsertCustomer creates a customer or updates the one with the same email
// @Summary Upsert Customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.UpsertCustomerRequest true "Customer data"
// @Success 201 {object} dto.APIResponse{data=models.Customer}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /api/customers [post]
func (h *CustomerHandler) UpsertCustomer(c fiber.Ctx) error {
	var req dto.UpsertCustomerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	customer, err := h.customerFlow.UpsertCustomer(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, customer)
}
