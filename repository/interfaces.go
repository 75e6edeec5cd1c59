// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/mini-crm/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByEmail(ctx context.Context, email string) (*models.Customer, error)
	ListNewestFirst(ctx context.Context) ([]*models.Customer, error)
	UpsertByEmail(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

// OrderRepository defines operations for orders
type OrderRepository interface {
	Repository[models.Order, models.OrderFilter]
	ListByCustomer(ctx context.Context, customerID *uuid.UUID) ([]*models.Order, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ListNewestFirst(ctx context.Context) ([]*models.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, update models.CampaignUpdate) (*models.Campaign, error)
	// Touch refreshes updated_at of a campaign that is still sending
	Touch(ctx context.Context, id uuid.UUID) error
}

// CommunicationRepository defines the append-only communication log
type CommunicationRepository interface {
	Repository[models.Communication, models.CommunicationFilter]
	ListByCampaign(ctx context.Context, campaignID *uuid.UUID) ([]*models.Communication, error)
}

// UserRepository defines operations for signed-in users
type UserRepository interface {
	ByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpsertByGoogleID(ctx context.Context, user *models.User) (*models.User, error)
}
