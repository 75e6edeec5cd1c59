package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/models"
	crmtest "github.com/amirphl/mini-crm/testing"
	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCustomer_SameEmailKeepsIdentity(t *testing.T) {
	repo := crmtest.NewCustomerMemoryRepository()
	flow := NewCustomerFlow(repo, nil)
	ctx := context.Background()

	first, err := flow.UpsertCustomer(ctx, &dto.UpsertCustomerRequest{Name: "Ada", Email: "ada@example.com"}, nil)
	require.NoError(t, err)

	second, err := flow.UpsertCustomer(ctx, &dto.UpsertCustomerRequest{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Phone: utils.ToPtr("+441234"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, "Ada Lovelace", second.Name)
	assert.Equal(t, "+441234", *second.Phone)

	all, err := flow.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListCustomers_NewestFirst(t *testing.T) {
	repo := crmtest.NewCustomerMemoryRepository()
	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, repo.Save(ctx, &models.Customer{Name: "old", Email: "old@example.com", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, repo.Save(ctx, &models.Customer{Name: "new", Email: "new@example.com", CreatedAt: base}))

	customers, err := NewCustomerFlow(repo, nil).ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "new", customers[0].Name)
	assert.Equal(t, "old", customers[1].Name)
}

func TestGetCustomer(t *testing.T) {
	repo := crmtest.NewCustomerMemoryRepository()
	flow := NewCustomerFlow(repo, nil)
	c, err := crmtest.NewTestFixtures(repo).CreateTestCustomer(context.Background(), "Grace")
	require.NoError(t, err)

	got, err := flow.GetCustomer(context.Background(), c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)

	_, err = flow.GetCustomer(context.Background(), uuid.NewString())
	assert.True(t, IsCustomerNotFound(err))

	_, err = flow.GetCustomer(context.Background(), "42")
	assert.ErrorIs(t, err, ErrInvalidCustomerID)
}

func TestUpsertCustomer_StorageError(t *testing.T) {
	repo := crmtest.NewCustomerMemoryRepository()
	repo.Fail = func(op string) error { return errors.New("db down") }

	_, err := NewCustomerFlow(repo, nil).UpsertCustomer(context.Background(), &dto.UpsertCustomerRequest{Name: "x", Email: "x@example.com"}, nil)
	require.Error(t, err)
	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "CUSTOMER_UPSERT_FAILED", be.Code)
	assert.False(t, IsInvalidInput(err))
}

func TestCreateOrder(t *testing.T) {
	customers := crmtest.NewCustomerMemoryRepository()
	orders := crmtest.NewOrderMemoryRepository()
	flow := NewOrderFlow(orders, customers, nil)
	ctx := context.Background()

	customer, err := crmtest.NewTestFixtures(customers).CreateTestCustomer(ctx, "Alan")
	require.NoError(t, err)

	t.Run("defaults", func(t *testing.T) {
		order, err := flow.CreateOrder(ctx, &dto.CreateOrderRequest{
			CustomerID: customer.ID.String(),
			Amount:     utils.ToPtr(19.999),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "pending", order.Status)
		assert.False(t, order.OrderDate.IsZero())
		assert.True(t, decimal.RequireFromString("20.00").Equal(order.TotalAmount))
	})

	t.Run("explicit date and status", func(t *testing.T) {
		date := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
		order, err := flow.CreateOrder(ctx, &dto.CreateOrderRequest{
			CustomerID: customer.ID.String(),
			Amount:     utils.ToPtr(5.0),
			OrderDate:  &date,
			Status:     "shipped",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "shipped", order.Status)
		assert.Equal(t, date, order.OrderDate)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := flow.CreateOrder(ctx, &dto.CreateOrderRequest{CustomerID: uuid.NewString(), Amount: utils.ToPtr(1.0)}, nil)
		assert.True(t, IsCustomerNotFound(err))
	})

	t.Run("list by customer newest order first", func(t *testing.T) {
		list, err := flow.ListOrders(ctx, &dto.ListOrdersRequest{CustomerID: customer.ID.String()})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, !list[0].OrderDate.Before(list[1].OrderDate))

		list, err = flow.ListOrders(ctx, &dto.ListOrdersRequest{CustomerID: uuid.NewString()})
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = flow.ListOrders(ctx, &dto.ListOrdersRequest{CustomerID: "x"})
		assert.ErrorIs(t, err, ErrInvalidCustomerID)
	})
}

func TestLogCommunication(t *testing.T) {
	customers := crmtest.NewCustomerMemoryRepository()
	campaigns := crmtest.NewCampaignMemoryRepository()
	communications := crmtest.NewCommunicationMemoryRepository()
	flow := NewCommunicationFlow(communications, campaigns, customers, nil)
	ctx := context.Background()

	customer, err := crmtest.NewTestFixtures(customers).CreateTestCustomer(ctx, "Edsger")
	require.NoError(t, err)
	campaign := &models.Campaign{Name: "c", Objective: "o", Message: "m"}
	require.NoError(t, campaigns.Save(ctx, campaign))

	entry, err := flow.LogCommunication(ctx, &dto.LogCommunicationRequest{
		CampaignID: campaign.ID.String(),
		CustomerID: customer.ID.String(),
		Message:    "hello",
		Status:     "delivered",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.CommunicationStatusDelivered, entry.Status)
	assert.NotNil(t, entry.DeliveryReceiptAt)
	assert.False(t, entry.SentAt.IsZero())

	_, err = flow.LogCommunication(ctx, &dto.LogCommunicationRequest{
		CampaignID: uuid.NewString(),
		CustomerID: customer.ID.String(),
		Message:    "hello",
		Status:     "sent",
	}, nil)
	assert.True(t, IsCampaignNotFound(err))

	_, err = flow.LogCommunication(ctx, &dto.LogCommunicationRequest{
		CampaignID: campaign.ID.String(),
		CustomerID: customer.ID.String(),
		Message:    "hello",
		Status:     "bounced",
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidCommunicationStatus)

	list, err := flow.ListCommunications(ctx, &dto.ListCommunicationsRequest{CampaignID: campaign.ID.String()})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = flow.ListCommunications(ctx, &dto.ListCommunicationsRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
