package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPEmailProvider sends mail through an SMTP relay
type SMTPEmailProvider struct {
	dialer   *gomail.Dialer
	fromName string
}

// NewSMTPEmailProvider creates an SMTP provider. secure selects implicit TLS (usually port 465);
// otherwise STARTTLS is used when the server offers it.
func NewSMTPEmailProvider(host string, port int, secure bool, username, password, fromName string) *SMTPEmailProvider {
	d := gomail.NewDialer(host, port, username, password)
	d.SSL = secure

	return &SMTPEmailProvider{
		dialer:   d,
		fromName: fromName,
	}
}

func (p *SMTPEmailProvider) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), senderDomain(msg.From))

	m := gomail.NewMessage()
	if p.fromName != "" {
		m.SetAddressHeader("From", msg.From, p.fromName)
	} else {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}

	return messageID, nil
}

func (p *SMTPEmailProvider) Name() string {
	return "smtp"
}

func senderDomain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return strings.Trim(address[i+1:], "> ")
	}
	return "localhost"
}
