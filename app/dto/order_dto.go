package dto

import "time"

// CreateOrderRequest represents the request to record an order
type CreateOrderRequest struct {
	CustomerID string     `json:"customer_id" validate:"required,uuid"`
	Amount     *float64   `json:"amount" validate:"required,gte=0"`
	OrderDate  *time.Time `json:"order_date"`
	Status     string     `json:"status" validate:"omitempty,max=32"`
}

// ListOrdersRequest carries the optional customer filter from the query string
type ListOrdersRequest struct {
	CustomerID string `query:"customer_id" validate:"omitempty,uuid"`
}
