package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestMailServiceWithoutProviderFailsEverySend(t *testing.T) {
	svc := NewMailService(nil, "crm@example.com", nil)

	res := svc.Send(context.Background(), &EmailMessage{To: "a@x.com", Subject: "hi", Text: "hello"})
	assert.False(t, res.Success)
	assert.Equal(t, ErrMailNotConfigured.Error(), res.Error)
	assert.False(t, svc.Configured())
	assert.Equal(t, "none", svc.ProviderName())
}

func TestMailServiceFillsSenderAndHTML(t *testing.T) {
	provider := NewMockEmailProvider(nil)
	svc := NewMailService(provider, "crm@example.com", nil)

	res := svc.Send(context.Background(), &EmailMessage{To: "a@x.com", Subject: "hi", Text: "hello"})
	require.True(t, res.Success)
	assert.NotEmpty(t, res.MessageID)

	sent := provider.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "crm@example.com", sent[0].From)
	assert.Equal(t, "<p>hello</p>", sent[0].HTML)
}

func TestMailServiceEscapesTextInDerivedHTML(t *testing.T) {
	provider := NewMockEmailProvider(nil)
	svc := NewMailService(provider, "crm@example.com", nil)

	res := svc.Send(context.Background(), &EmailMessage{To: "a@x.com", Subject: "hi", Text: `<script>alert("x")</script>`})
	require.True(t, res.Success)

	sent := provider.GetSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "<p>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</p>", sent[0].HTML)
}

func TestMailServiceReportsProviderFailure(t *testing.T) {
	provider := NewMockEmailProvider(nil)
	provider.FailWhen(func(msg *EmailMessage) error {
		if msg.To == "bounce@x.com" {
			return errors.New("mailbox unavailable")
		}
		return nil
	})
	svc := NewMailService(provider, "crm@example.com", nil)

	ok := svc.Send(context.Background(), &EmailMessage{To: "a@x.com", Text: "x"})
	bad := svc.Send(context.Background(), &EmailMessage{To: "bounce@x.com", Text: "x"})

	assert.True(t, ok.Success)
	assert.False(t, bad.Success)
	assert.Equal(t, "mailbox unavailable", bad.Error)
	assert.Len(t, provider.GetSentMessages(), 2)

	provider.ClearSentMessages()
	assert.Empty(t, provider.GetSentMessages())
}

func TestMailServiceRequiresSender(t *testing.T) {
	svc := NewMailService(NewMockEmailProvider(nil), "", nil)
	res := svc.Send(context.Background(), &EmailMessage{To: "a@x.com", Text: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, ErrMissingSender.Error(), res.Error)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func TestSESEmailProviderBuildsInput(t *testing.T) {
	client := &fakeSES{}
	p := NewSESEmailProviderWithClient(client, "Mini CRM", "tracking")

	id, err := p.SendEmail(context.Background(), &EmailMessage{
		To: "a@x.com", From: "crm@example.com", Subject: "Campaign: Spring", Text: "Hi", HTML: "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)
	assert.Equal(t, "Mini CRM <crm@example.com>", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"a@x.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "tracking", aws.ToString(client.input.ConfigurationSetName))
	assert.Equal(t, "<p>Hi</p>", aws.ToString(client.input.Content.Simple.Body.Html.Data))

	client.err = errors.New("throttled")
	_, err = p.SendEmail(context.Background(), &EmailMessage{To: "a@x.com", From: "crm@example.com"})
	assert.ErrorContains(t, err, "throttled")
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "example.com", senderDomain("crm@example.com"))
	assert.Equal(t, "localhost", senderDomain("nobody"))
}

func TestGoogleIdentityVerifier(t *testing.T) {
	validate := func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good" || audience != "client-1" {
			return nil, errors.New("bad signature")
		}
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims: map[string]any{
				"email":   "ada@example.com",
				"name":    "Ada",
				"picture": "https://example.com/ada.png",
			},
		}, nil
	}

	v := NewGoogleIdentityVerifierWithValidator("client-1", validate)

	profile, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, &IdentityProfile{
		Subject: "google-sub-1", Email: "ada@example.com", Name: "Ada", AvatarURL: "https://example.com/ada.png",
	}, profile)

	_, err = v.Verify(context.Background(), "forged")
	assert.Error(t, err)

	_, err = NewGoogleIdentityVerifierWithValidator("", validate).Verify(context.Background(), "good")
	assert.ErrorIs(t, err, ErrIdentityNotConfigured)
}
