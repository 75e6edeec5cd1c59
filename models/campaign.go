package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CampaignStatus represents the lifecycle status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusSending,
		CampaignStatusCompleted, CampaignStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Campaign is one dispatch of a message template to the customer base.
// Sent, Delivered and Failed are written once, after the fan-out completes.
type Campaign struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Objective     string         `gorm:"type:text;not null" json:"objective"`
	AudienceRules datatypes.JSON `gorm:"type:jsonb;not null" json:"audience_rules"`
	Message       string         `gorm:"type:text;not null" json:"message"`
	AudienceSize  int            `gorm:"not null" json:"audience_size"`
	Sent          int            `gorm:"not null" json:"sent"`
	Delivered     int            `gorm:"not null" json:"delivered"`
	Failed        int            `gorm:"not null" json:"failed"`
	Status        CampaignStatus `gorm:"size:32;not null;index:idx_campaigns_status" json:"status"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if len(c.AudienceRules) == 0 {
		c.AudienceRules = datatypes.JSON("{}")
	}
	return nil
}

// IsFinished reports whether the dispatch reached a terminal status
func (c *Campaign) IsFinished() bool {
	return c.Status == CampaignStatusCompleted || c.Status == CampaignStatusFailed
}

// CampaignUpdate carries a partial update; nil fields are left untouched
type CampaignUpdate struct {
	Sent      *int
	Delivered *int
	Failed    *int
	Status    *CampaignStatus
}

// IsEmpty reports whether the update changes nothing
func (u CampaignUpdate) IsEmpty() bool {
	return u.Sent == nil && u.Delivered == nil && u.Failed == nil && u.Status == nil
}

// Columns returns the column assignments for the non-nil fields
func (u CampaignUpdate) Columns() map[string]any {
	cols := make(map[string]any, 5)
	if u.Sent != nil {
		cols["sent"] = *u.Sent
	}
	if u.Delivered != nil {
		cols["delivered"] = *u.Delivered
	}
	if u.Failed != nil {
		cols["failed"] = *u.Failed
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	return cols
}

// CampaignFilter represents filter criteria for campaign queries
type CampaignFilter struct {
	ID            *uuid.UUID      `json:"id,omitempty"`
	Status        *CampaignStatus `json:"status,omitempty"`
	Name          *string         `json:"name,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
	UpdatedBefore *time.Time      `json:"updated_before,omitempty"`
}
