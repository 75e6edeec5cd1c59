package dto

import (
	"encoding/json"

	"github.com/amirphl/mini-crm/models"
)

// CreateCampaignRequest starts a campaign dispatch to every customer
type CreateCampaignRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=255"`
	Objective     string          `json:"objective" validate:"required,min=1"`
	AudienceRules json.RawMessage `json:"audience_rules"`
	Message       string          `json:"message" validate:"required,min=1"`
}

// UpdateCampaignRequest is a partial update of counters and status
type UpdateCampaignRequest struct {
	ID        string  `json:"-" validate:"required,uuid"`
	Sent      *int    `json:"sent" validate:"omitempty,gte=0"`
	Delivered *int    `json:"delivered" validate:"omitempty,gte=0"`
	Failed    *int    `json:"failed" validate:"omitempty,gte=0"`
	Status    *string `json:"status" validate:"omitempty,oneof=draft sending completed failed"`
}

// DispatchStats is the aggregate outcome of one dispatch
type DispatchStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// CreateCampaignResponse is the dispatched campaign plus its stats
type CreateCampaignResponse struct {
	Success bool             `json:"success"`
	Data    *models.Campaign `json:"data"`
	Stats   DispatchStats    `json:"stats"`
}

// CreateCampaignResult is what the dispatch workflow returns to the handler
type CreateCampaignResult struct {
	Campaign *models.Campaign
	Stats    DispatchStats
	// MissingPlaceholder is set when the template had no recognised name placeholder
	MissingPlaceholder bool
}
