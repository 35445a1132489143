package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"curiousminds/internal/models"
)

// EmailService sends account notifications via Amazon SES. When no sender
// address is configured the service runs disabled and every send is a
// logged no-op, so offline installs work without AWS credentials.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates an email service. An empty fromEmail yields a
// disabled service rather than an error.
func NewEmailService(awsRegion, fromEmail, fromName string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendCredentials mails a provisioned account its username and fallback
// password
func (s *EmailService) SendCredentials(ctx context.Context, user *models.User, password string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): credentials to %s", user.Email)
		return nil
	}

	subject := "Your Curious Minds Account"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.credentials { background-color: #fff; border: 1px solid #ddd; padding: 15px; border-radius: 5px; font-family: monospace; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Curious Minds</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>An account has been created for you. Use these credentials to sign in:</p>
			<div class="credentials">
				<p>Username: <strong>%s</strong></p>
				<p>Password: <strong>%s</strong></p>
			</div>
			<p>The app works offline once signed in; an internet connection is only needed for the first sign-in and for syncing results.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Curious Minds. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, user.FullName, user.Username, password)

	textBody := fmt.Sprintf(`Hi %s,

An account has been created for you. Use these credentials to sign in:

Username: %s
Password: %s

The app works offline once signed in; an internet connection is only needed
for the first sign-in and for syncing results.

---
This is an automated email from Curious Minds. Please do not reply.
`, user.FullName, user.Username, password)

	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
