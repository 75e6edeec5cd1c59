// Package dto contains the request and response shapes of the HTTP API
package dto

// APIResponse represents the standard success envelope
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body produced by the global error handler and by validation failures.
// Stack and Details are only filled outside production.
type ErrorResponse struct {
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Stack   string   `json:"stack,omitempty"`
	Details any      `json:"details,omitempty"`
}

// NotFoundResponse is returned for unmatched routes
type NotFoundResponse struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// FailureResponse is the {success:false, error} shape used by auth failures
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}
