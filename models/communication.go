package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunicationStatus is the outcome recorded for one send attempt
type CommunicationStatus string

const (
	CommunicationStatusSent      CommunicationStatus = "sent"
	CommunicationStatusDelivered CommunicationStatus = "delivered"
	CommunicationStatusFailed    CommunicationStatus = "failed"
)

func (s CommunicationStatus) String() string {
	return string(s)
}

func (s CommunicationStatus) Valid() bool {
	switch s {
	case CommunicationStatusSent, CommunicationStatusDelivered, CommunicationStatusFailed:
		return true
	default:
		return false
	}
}

func (s *CommunicationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CommunicationStatus(v)
	case []byte:
		*s = CommunicationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CommunicationStatus", value)
	}

	return nil
}

func (s CommunicationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid communication status: %q", string(s))
	}
	return string(s), nil
}

// Communication is an append-only log entry for one send attempt to one customer
type Communication struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID        uuid.UUID           `gorm:"type:uuid;not null;index:idx_communication_log_campaign_id" json:"campaign_id"`
	CustomerID        uuid.UUID           `gorm:"type:uuid;not null;index:idx_communication_log_customer_id" json:"customer_id"`
	Message           string              `gorm:"type:text;not null" json:"message"`
	Status            CommunicationStatus `gorm:"size:16;not null" json:"status"`
	SentAt            time.Time           `gorm:"not null" json:"sent_at"`
	DeliveryReceiptAt *time.Time          `json:"delivery_receipt_at"`
}

// TableName returns the table name for the model
func (Communication) TableName() string {
	return "communication_log"
}

func (c *Communication) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.SentAt.IsZero() {
		c.SentAt = utils.UTCNow()
	}
	return nil
}

// CommunicationFilter represents filter criteria for communication log queries
type CommunicationFilter struct {
	CampaignID *uuid.UUID           `json:"campaign_id,omitempty"`
	CustomerID *uuid.UUID           `json:"customer_id,omitempty"`
	Status     *CommunicationStatus `json:"status,omitempty"`
}
