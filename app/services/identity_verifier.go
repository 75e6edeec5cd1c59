package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrIdentityNotConfigured = errors.New("google client id is not configured")

// IdentityProfile is the verified subset of an identity token
type IdentityProfile struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityVerifier validates an externally issued identity token
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*IdentityProfile, error)
}

// TokenValidator matches idtoken.Validate
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleIdentityVerifier verifies Google ID tokens issued to the configured client id
type GoogleIdentityVerifier struct {
	clientID string
	validate TokenValidator
}

func NewGoogleIdentityVerifier(clientID string) *GoogleIdentityVerifier {
	return NewGoogleIdentityVerifierWithValidator(clientID, idtoken.Validate)
}

// NewGoogleIdentityVerifierWithValidator swaps the signature check, used by tests
func NewGoogleIdentityVerifierWithValidator(clientID string, validate TokenValidator) *GoogleIdentityVerifier {
	return &GoogleIdentityVerifier{clientID: clientID, validate: validate}
}

func (v *GoogleIdentityVerifier) Verify(ctx context.Context, token string) (*IdentityProfile, error) {
	if v.clientID == "" {
		return nil, ErrIdentityNotConfigured
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", err)
	}
	if payload == nil || payload.Subject == "" {
		return nil, errors.New("invalid google token: missing subject")
	}

	email := claimString(payload.Claims, "email")
	if email == "" {
		return nil, errors.New("invalid google token: missing email")
	}

	return &IdentityProfile{
		Subject:   payload.Subject,
		Email:     email,
		Name:      claimString(payload.Claims, "name"),
		AvatarURL: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
