package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the part of the SES v2 client the provider calls
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESEmailProvider sends mail through AWS SES v2
type SESEmailProvider struct {
	client           SESAPI
	fromName         string
	configurationSet string
}

// NewSESEmailProvider loads AWS configuration for region. Static keys are used when both are
// given, otherwise the default credential chain applies.
func NewSESEmailProvider(ctx context.Context, region, accessKey, secretKey, fromName, configurationSet string) (*SESEmailProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESEmailProviderWithClient(sesv2.NewFromConfig(cfg), fromName, configurationSet), nil
}

// NewSESEmailProviderWithClient wraps an existing SES client
func NewSESEmailProviderWithClient(client SESAPI, fromName, configurationSet string) *SESEmailProvider {
	return &SESEmailProvider{
		client:           client,
		fromName:         fromName,
		configurationSet: configurationSet,
	}
}

func (p *SESEmailProvider) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	from := msg.From
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, msg.From)
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
	if p.configurationSet != "" {
		input.ConfigurationSetName = aws.String(p.configurationSet)
	}

	out, err := p.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

func (p *SESEmailProvider) Name() string {
	return "ses"
}
