package models

import (
	"time"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a purchase made by a customer. It is not touched by the campaign workflow.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_customer_id" json:"customer_id"`
	OrderDate   time.Time       `gorm:"not null;index:idx_orders_order_date" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	Status      string          `gorm:"size:32;not null" json:"status"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := utils.UTCNow()
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.Status == "" {
		o.Status = utils.DefaultOrderStatus
	}
	return nil
}

// OrderFilter represents filter criteria for order queries
type OrderFilter struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Status     *string    `json:"status,omitempty"`
}

func init() {
	// amounts are rendered as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}
