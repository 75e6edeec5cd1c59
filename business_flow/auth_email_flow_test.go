package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/app/services"
	crmtest "github.com/amirphl/mini-crm/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	profile *services.IdentityProfile
	err     error
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (*services.IdentityProfile, error) {
	return v.profile, v.err
}

func TestGoogleLogin_UpsertsUser(t *testing.T) {
	users := crmtest.NewUserMemoryRepository()
	verifier := &stubVerifier{profile: &services.IdentityProfile{
		Subject:   "google-123",
		Email:     "ops@example.com",
		Name:      "Ops",
		AvatarURL: "https://example.com/a.png",
	}}
	flow := NewAuthFlow(verifier, users, nil)

	first, err := flow.GoogleLogin(context.Background(), &dto.GoogleLoginRequest{Token: "t"}, nil)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, "ops@example.com", first.User.Email)
	require.NotNil(t, first.User.AvatarURL)

	verifier.profile.Name = "Ops Team"
	second, err := flow.GoogleLogin(context.Background(), &dto.GoogleLoginRequest{Token: "t"}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Ops Team", second.User.Name)
}

func TestGoogleLogin_RejectedToken(t *testing.T) {
	users := crmtest.NewUserMemoryRepository()
	flow := NewAuthFlow(&stubVerifier{err: errors.New("expired")}, users, nil)

	_, err := flow.GoogleLogin(context.Background(), &dto.GoogleLoginRequest{Token: "t"}, nil)
	assert.True(t, IsIdentityVerificationFailed(err))
	assert.Equal(t, 0, users.Calls("UpsertByGoogleID"))
}

func TestEmailFlow(t *testing.T) {
	provider := services.NewMockEmailProvider(nil)
	mailer := services.NewMailService(provider, "noreply@example.com", nil)
	flow := NewEmailFlow(mailer, "test", nil)
	ctx := context.Background()

	t.Run("send", func(t *testing.T) {
		resp := flow.SendEmail(ctx, &dto.SendEmailRequest{To: "a@example.com", Subject: "Hi", Text: "body"})
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.MessageID)
		sent := provider.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "noreply@example.com", sent[0].From)
		assert.Equal(t, "<p>body</p>", sent[0].HTML)
	})

	t.Run("test email defaults recipient", func(t *testing.T) {
		provider.ClearSentMessages()
		resp := flow.SendTestEmail(ctx, &dto.TestEmailRequest{})
		assert.True(t, resp.Success)
		sent := provider.GetSentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "test@example.com", sent[0].To)
		assert.Equal(t, "Test Email - Backend API", sent[0].Subject)
		assert.NotNil(t, resp.Details)
	})

	t.Run("provider failure is reported", func(t *testing.T) {
		provider.FailWhen(func(*services.EmailMessage) error { return errors.New("quota exceeded") })
		defer provider.FailWhen(nil)
		resp := flow.SendEmail(ctx, &dto.SendEmailRequest{To: "a@example.com", Subject: "Hi", Text: "body"})
		assert.False(t, resp.Success)
		assert.Equal(t, "quota exceeded", resp.Error)
	})

	t.Run("status", func(t *testing.T) {
		status := flow.Status()
		assert.True(t, status.Configured)
		assert.Equal(t, "mock", status.Provider)
		assert.Equal(t, "test", status.Environment)
	})
}

func TestEmailFlow_Unconfigured(t *testing.T) {
	flow := NewEmailFlow(services.NewMailService(nil, "", nil), "development", nil)
	resp := flow.SendEmail(context.Background(), &dto.SendEmailRequest{To: "a@example.com", Subject: "Hi"})
	assert.False(t, resp.Success)
	assert.False(t, flow.Status().Configured)
	assert.Equal(t, "none", flow.Status().Provider)
}
