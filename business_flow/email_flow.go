package businessflow

import (
	"context"

	"github.com/amirphl/mini-crm/app/dto"
	"github.com/amirphl/mini-crm/app/services"
	"go.uber.org/zap"
)

const (
	testEmailRecipient = "test@example.com"
	testEmailSubject   = "Test Email - Backend API"
	testEmailText      = "This is a test email from the CRM backend API."
)

// EmailFlow exposes the mail transport over the API
type EmailFlow interface {
	SendEmail(ctx context.Context, req *dto.SendEmailRequest) *dto.SendEmailResponse
	SendTestEmail(ctx context.Context, req *dto.TestEmailRequest) *dto.SendEmailResponse
	Status() *dto.EmailStatusResponse
}

// EmailFlowImpl implements the email flow
type EmailFlowImpl struct {
	mailer      services.MailService
	environment string
	logger      *zap.Logger
}

// NewEmailFlow creates a new email flow instance
func NewEmailFlow(mailer services.MailService, environment string, logger *zap.Logger) EmailFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailFlowImpl{
		mailer:      mailer,
		environment: environment,
		logger:      logger.Named("email"),
	}
}

func (s *EmailFlowImpl) SendEmail(ctx context.Context, req *dto.SendEmailRequest) *dto.SendEmailResponse {
	result := s.mailer.Send(ctx, &services.EmailMessage{
		To:      req.To,
		From:    req.From,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})
	return toSendEmailResponse(result, nil)
}

// SendTestEmail sends a fixed message, to test@example.com unless a recipient is given
func (s *EmailFlowImpl) SendTestEmail(ctx context.Context, req *dto.TestEmailRequest) *dto.SendEmailResponse {
	to := testEmailRecipient
	if req != nil && req.To != "" {
		to = req.To
	}

	result := s.mailer.Send(ctx, &services.EmailMessage{
		To:      to,
		Subject: testEmailSubject,
		Text:    testEmailText,
	})
	return toSendEmailResponse(result, map[string]string{
		"to":       to,
		"provider": s.mailer.ProviderName(),
		"message":  "Test email processed",
	})
}

func (s *EmailFlowImpl) Status() *dto.EmailStatusResponse {
	return &dto.EmailStatusResponse{
		Configured:  s.mailer.Configured(),
		Provider:    s.mailer.ProviderName(),
		Environment: s.environment,
	}
}

func toSendEmailResponse(result *services.EmailResult, details any) *dto.SendEmailResponse {
	return &dto.SendEmailResponse{
		Success:   result.Success,
		MessageID: result.MessageID,
		Error:     result.Error,
		Details:   details,
	}
}
