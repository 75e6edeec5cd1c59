// Package models contains the gorm models and filter types persisted by the Storage Gateway
package models

import (
	"time"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a campaign recipient. Email is the upsert key.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uk_customers_email" json:"email"`
	Phone     *string   `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `gorm:"not null;index:idx_customers_created_at" json:"created_at"`
}

// TableName returns the table name for the model
func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns the identity and creation time when absent
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Name          *string    `json:"name,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
