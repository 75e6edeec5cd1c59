package dto

// UpsertCustomerRequest creates a customer or replaces name and phone of the one with this email
type UpsertCustomerRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=255"`
	Email string  `json:"email" validate:"required,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}
