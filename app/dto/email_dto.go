package dto

// SendEmailRequest sends one ad-hoc email
type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	From    string `json:"from" validate:"omitempty,email"`
	Subject string `json:"subject" validate:"required,min=1"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// TestEmailRequest optionally overrides the test recipient
type TestEmailRequest struct {
	To string `json:"to" validate:"omitempty,email"`
}

// SendEmailResponse mirrors the transport outcome
type SendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// EmailStatusResponse reports the mail transport configuration
type EmailStatusResponse struct {
	Configured  bool   `json:"configured"`
	Provider    string `json:"provider"`
	Environment string `json:"environment"`
}
