package dto

import "time"

// LogCommunicationRequest appends an entry to the communication log
type LogCommunicationRequest struct {
	CampaignID        string     `json:"campaign_id" validate:"required,uuid"`
	CustomerID        string     `json:"customer_id" validate:"required,uuid"`
	Message           string     `json:"message" validate:"required,min=1"`
	Status            string     `json:"status" validate:"required,oneof=sent delivered failed"`
	SentAt            *time.Time `json:"sent_at"`
	DeliveryReceiptAt *time.Time `json:"delivery_receipt_at"`
}

// ListCommunicationsRequest carries the optional campaign filter from the query string
type ListCommunicationsRequest struct {
	CampaignID string `query:"campaign_id" validate:"omitempty,uuid"`
}
