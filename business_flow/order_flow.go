package businessflow

import (
	"context"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderFlow handles order recording and listing
type OrderFlow interface {
	ListOrders(ctx context.Context, req *dto.ListOrdersRequest) ([]*models.Order, error)
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest, metadata *ClientMetadata) (*models.Order, error)
}

// OrderFlowImpl implements the order business flow
type OrderFlowImpl struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewOrderFlow creates a new order flow instance
func NewOrderFlow(orderRepo repository.OrderRepository, customerRepo repository.CustomerRepository, logger *zap.Logger) OrderFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderFlowImpl{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		logger:       logger.Named("order"),
	}
}

// ListOrders returns orders by most recent order date, optionally for one customer
func (s *OrderFlowImpl) ListOrders(ctx context.Context, req *dto.ListOrdersRequest) ([]*models.Order, error) {
	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, ErrInvalidCustomerID
		}
		customerID = &id
	}

	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}
	return orders, nil
}

// CreateOrder records an order for an existing customer.
// Order date defaults to now and status to pending.
func (s *OrderFlowImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest, metadata *ClientMetadata) (*models.Order, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, ErrInvalidCustomerID
	}

	customer, err := s.customerRepo.ByID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "Failed to fetch customer", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	order := &models.Order{
		CustomerID:  customerID,
		TotalAmount: decimal.NewFromFloat(utils.Deref(req.Amount)).Round(2),
		Status:      req.Status,
	}
	if req.OrderDate != nil {
		order.OrderDate = req.OrderDate.UTC()
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, NewBusinessError("ORDER_CREATION_FAILED", "Failed to create order", err)
	}

	s.logger.Debug("order created", append(metadata.fields(),
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()))...)
	return order, nil
}
