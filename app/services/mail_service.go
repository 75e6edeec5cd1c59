// Package services provides external service integrations: outbound mail and identity verification
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"

	"github.com/amirphl/mini-crm/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMailNotConfigured = errors.New("email transport not configured")
	ErrMissingSender     = errors.New("sender address is required")
	ErrMissingRecipient  = errors.New("recipient address is required")
)

// EmailMessage is one outbound email
type EmailMessage struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

// EmailResult is the outcome of a single send: a provider message id, or a failure reason
type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// EmailProvider performs one network send and returns the provider-assigned message id
type EmailProvider interface {
	SendEmail(ctx context.Context, msg *EmailMessage) (string, error)
	Name() string
}

// MailService is the mail transport used by the request layer and the campaign workflow.
// Send never returns an error; failures are reported in the result.
type MailService interface {
	Send(ctx context.Context, msg *EmailMessage) *EmailResult
	Configured() bool
	ProviderName() string
	DefaultFrom() string
}

// MailServiceImpl implements MailService on top of a single EmailProvider
type MailServiceImpl struct {
	provider    EmailProvider
	defaultFrom string
	logger      *zap.Logger
}

// NewMailService creates a mail service. A nil provider makes every send fail.
func NewMailService(provider EmailProvider, defaultFrom string, logger *zap.Logger) MailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailServiceImpl{
		provider:    provider,
		defaultFrom: defaultFrom,
		logger:      logger.Named("mail"),
	}
}

// Send delivers msg, filling the sender and HTML body when absent
func (s *MailServiceImpl) Send(ctx context.Context, msg *EmailMessage) *EmailResult {
	if s.provider == nil {
		s.logger.Warn("email not sent, transport not configured", zap.String("to", utils.RedactEmail(msg.To)))
		return &EmailResult{Success: false, Error: ErrMailNotConfigured.Error()}
	}

	out := *msg
	if out.From == "" {
		out.From = s.defaultFrom
	}
	if out.From == "" {
		return &EmailResult{Success: false, Error: ErrMissingSender.Error()}
	}
	if out.To == "" {
		return &EmailResult{Success: false, Error: ErrMissingRecipient.Error()}
	}
	if out.HTML == "" && out.Text != "" {
		out.HTML = "<p>" + html.EscapeString(out.Text) + "</p>"
	}

	messageID, err := s.provider.SendEmail(ctx, &out)
	if err != nil {
		s.logger.Warn("email send failed",
			zap.String("provider", s.provider.Name()),
			zap.String("to", utils.RedactEmail(out.To)),
			zap.Error(err))
		return &EmailResult{Success: false, Error: err.Error()}
	}

	s.logger.Debug("email sent",
		zap.String("provider", s.provider.Name()),
		zap.String("to", utils.RedactEmail(out.To)),
		zap.String("message_id", messageID))

	return &EmailResult{Success: true, MessageID: messageID}
}

func (s *MailServiceImpl) Configured() bool {
	return s.provider != nil
}

func (s *MailServiceImpl) ProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

func (s *MailServiceImpl) DefaultFrom() string {
	return s.defaultFrom
}

// MockEmailProvider records messages instead of sending them
type MockEmailProvider struct {
	mu       sync.Mutex
	sent     []EmailMessage
	failWith func(msg *EmailMessage) error
	logger   *zap.Logger
}

// NewMockEmailProvider creates a recording provider that accepts every message
func NewMockEmailProvider(logger *zap.Logger) *MockEmailProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockEmailProvider{logger: logger}
}

// FailWhen installs a hook deciding per message whether the send fails
func (p *MockEmailProvider) FailWhen(fn func(msg *EmailMessage) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = fn
}

func (p *MockEmailProvider) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sent = append(p.sent, *msg)
	if p.failWith != nil {
		if err := p.failWith(msg); err != nil {
			return "", err
		}
	}

	id := fmt.Sprintf("<%s@mock.local>", uuid.NewString())
	p.logger.Info("mock email", zap.String("to", utils.RedactEmail(msg.To)), zap.String("subject", msg.Subject))
	return id, nil
}

func (p *MockEmailProvider) Name() string {
	return "mock"
}

// GetSentMessages returns every message handed to the provider, failed ones included
func (p *MockEmailProvider) GetSentMessages() []EmailMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]EmailMessage(nil), p.sent...)
}

func (p *MockEmailProvider) ClearSentMessages() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = nil
}
