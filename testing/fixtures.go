package testing

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
)

// TestFixtures creates test data through any CustomerRepository
type TestFixtures struct {
	Customers repository.CustomerRepository
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(customers repository.CustomerRepository) *TestFixtures {
	return &TestFixtures{Customers: customers}
}

// CreateTestCustomer stores a customer with a random unique email
func (tf *TestFixtures) CreateTestCustomer(ctx context.Context, name string) (*models.Customer, error) {
	customer := &models.Customer{
		Name:  name,
		Email: fmt.Sprintf("customer.%09d@example.com", rand.Intn(1_000_000_000)),
		Phone: utils.ToPtr(fmt.Sprintf("+1555%07d", rand.Intn(10_000_000))),
	}
	if err := tf.Customers.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateMultipleTestCustomers stores one customer per name, in order
func (tf *TestFixtures) CreateMultipleTestCustomers(ctx context.Context, names ...string) ([]*models.Customer, error) {
	customers := make([]*models.Customer, 0, len(names))
	for _, name := range names {
		c, err := tf.CreateTestCustomer(ctx, name)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, nil
}
