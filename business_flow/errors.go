// Package businessflow contains the core business logic and use cases of the CRM
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidCustomerID = errors.New("invalid customer ID")

	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrInvalidCampaignID     = errors.New("invalid campaign ID")
	ErrCampaignUpdateEmpty   = errors.New("at least one field must be provided for update")
	ErrInvalidCampaignStatus = errors.New("invalid campaign status")
	ErrInvalidAudienceRules  = errors.New("audience rules must be a JSON object")

	ErrInvalidCommunicationStatus = errors.New("invalid communication status")

	ErrIdentityVerificationFailed = errors.New("identity verification failed")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

// IsInvalidInput reports errors caused by request values rather than by the system
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidCustomerID) ||
		errors.Is(err, ErrInvalidCampaignID) ||
		errors.Is(err, ErrCampaignUpdateEmpty) ||
		errors.Is(err, ErrInvalidCampaignStatus) ||
		errors.Is(err, ErrInvalidAudienceRules) ||
		errors.Is(err, ErrInvalidCommunicationStatus)
}

func IsIdentityVerificationFailed(err error) bool {
	return errors.Is(err, ErrIdentityVerificationFailed)
}
