package handlers

import (
	"github.com/amirphl/mini-crm/app/dto"
	businessflow "github.com/amirphl/mini-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	responder
	orderFlow businessflow.OrderFlow
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderFlow businessflow.OrderFlow) *OrderHandler {
	return &OrderHandler{
		responder: newResponder(),
		orderFlow: orderFlow,
	}
}

// ListOrders returns orders, optionally for one customer
// @Summary List Orders
// @Tags Orders
// @Produce json
// @Param customer_id query string false "Customer ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Order}
// @Router /api/orders [get]
func (h *OrderHandler) ListOrders(c fiber.Ctx) error {
	var req dto.ListOrdersRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	orders, err := h.orderFlow.ListOrders(ctx, &req)
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, orders)
}

// CreateOrder records an order
// @Summary Create Order
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "Order data"
// @Success 201 {object} dto.APIResponse{data=models.Order}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrder(c fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", []string{err.Error()})
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c, defaultRequestTimeout)
	defer cancel()

	order, err := h.orderFlow.CreateOrder(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.businessError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, order)
}
