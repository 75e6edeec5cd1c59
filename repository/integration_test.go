package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	crmtest "github.com/amirphl/mini-crm/testing"
	"github.com/amirphl/mini-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *crmtest.TestDB {
	t.Helper()
	if !crmtest.DatabaseAvailable() {
		t.Skip("TEST_DB_HOST not set")
	}

	tdb, err := crmtest.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = tdb.TeardownTestDB() })
	return tdb
}

func TestCustomerRepositoryPostgres(t *testing.T) {
	tdb := setupDB(t)
	repo := repository.NewCustomerRepository(tdb.DB)
	fixtures := crmtest.NewTestFixtures(repo)
	ctx := context.Background()

	t.Run("UpsertByEmail keeps identity", func(t *testing.T) {
		first, err := repo.UpsertByEmail(ctx, &models.Customer{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		second, err := repo.UpsertByEmail(ctx, &models.Customer{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
			Phone: utils.ToPtr("+15550001"),
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Ada Lovelace", second.Name)
		require.NotNil(t, second.Phone)
		assert.Equal(t, "+15550001", *second.Phone)
		assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)

		count, err := repo.Count(ctx, models.CustomerFilter{Email: utils.ToPtr("ada@example.com")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		require.NoError(t, tdb.ClearAllTables())

		created, err := fixtures.CreateMultipleTestCustomers(ctx, "one", "two", "three")
		require.NoError(t, err)

		customers, err := repo.ListNewestFirst(ctx)
		require.NoError(t, err)
		require.Len(t, customers, 3)
		assert.Equal(t, created[2].ID, customers[0].ID)
		assert.Equal(t, created[0].ID, customers[2].ID)
	})
}

func TestCampaignAndCommunicationRepositoryPostgres(t *testing.T) {
	tdb := setupDB(t)
	customers := repository.NewCustomerRepository(tdb.DB)
	campaigns := repository.NewCampaignRepository(tdb.DB)
	communications := repository.NewCommunicationRepository(tdb.DB)
	orders := repository.NewOrderRepository(tdb.DB)
	ctx := context.Background()

	customer, err := crmtest.NewTestFixtures(customers).CreateTestCustomer(ctx, "Grace")
	require.NoError(t, err)

	campaign := &models.Campaign{Name: "Spring", Objective: "reactivate", Message: "Hi {name}", AudienceSize: 1}
	require.NoError(t, campaigns.Save(ctx, campaign))
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)

	sent, delivered, failed := 1, 1, 0
	status := models.CampaignStatusCompleted
	updated, err := campaigns.Update(ctx, campaign.ID, models.CampaignUpdate{
		Sent: &sent, Delivered: &delivered, Failed: &failed, Status: &status,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.CampaignStatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.Delivered)
	assert.NotNil(t, updated.UpdatedAt)

	entry := &models.Communication{
		CampaignID: campaign.ID,
		CustomerID: customer.ID,
		Message:    "Hi Grace",
		Status:     models.CommunicationStatusDelivered,
	}
	require.NoError(t, communications.Save(ctx, entry))

	logged, err := communications.ListByCampaign(ctx, &campaign.ID)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "Hi Grace", logged[0].Message)

	order := &models.Order{CustomerID: customer.ID, TotalAmount: decimal.RequireFromString("19.99")}
	require.NoError(t, orders.Save(ctx, order))

	byCustomer, err := orders.ListByCustomer(ctx, &customer.ID)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.True(t, decimal.RequireFromString("19.99").Equal(byCustomer[0].TotalAmount))
	assert.Equal(t, utils.DefaultOrderStatus, byCustomer[0].Status)
}
