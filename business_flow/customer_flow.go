package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerFlow handles customer registration and lookup
type CustomerFlow interface {
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpsertCustomer(ctx context.Context, req *dto.UpsertCustomerRequest, metadata *ClientMetadata) (*models.Customer, error)
}

// CustomerFlowImpl implements the customer business flow
type CustomerFlowImpl struct {
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerFlow creates a new customer flow instance
func NewCustomerFlow(customerRepo repository.CustomerRepository, logger *zap.Logger) CustomerFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerFlowImpl{
		customerRepo: customerRepo,
		logger:       logger.Named("customer"),
	}
}

func (s *CustomerFlowImpl) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customerRepo.ListNewestFirst(ctx)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LIST_FAILED", "Failed to list customers", err)
	}
	return customers, nil
}

func (s *CustomerFlowImpl) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customerID, err := uuid.Parse(id)
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
	return customer, nil
}

// UpsertCustomer creates the customer, or replaces name and phone of the one sharing the email.
// Identity and creation time of an existing customer are preserved.
func (s *CustomerFlowImpl) UpsertCustomer(ctx context.Context, req *dto.UpsertCustomerRequest, metadata *ClientMetadata) (*models.Customer, error) {
	customer := &models.Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: req.Phone,
	}

	saved, err := s.customerRepo.UpsertByEmail(ctx, customer)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_UPSERT_FAILED", "Failed to save customer", err)
	}

	s.logger.Debug("customer upserted", append(metadata.fields(), zap.String("customer_id", saved.ID.String()))...)
	return saved, nil
}
