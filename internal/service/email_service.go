package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesClient is the part of the SES API the email service uses
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends access notifications via Amazon SES
type EmailService struct {
	client      sesClient
	fromEmail   string
	fromName    string
	notifyEmail string
	appBaseURL  string
	enabled     bool
	debug       bool
}

// NewEmailService creates a new email service. It is disabled when either
// the sender or the notification recipient is not configured.
func NewEmailService(awsRegion, fromEmail, fromName, notifyEmail, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" || notifyEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL or ACCESS_NOTIFY_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Access notifications will be skipped")
		}
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] Notify Email: %s", notifyEmail)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:      sesv2.NewFromConfig(cfg),
		fromEmail:   fromEmail,
		fromName:    fromName,
		notifyEmail: notifyEmail,
		appBaseURL:  appBaseURL,
		enabled:     true,
		debug:       debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendAccessDeniedNotice tells the operator that an account outside the
// allow-list tried to sign in
func (s *EmailService) SendAccessDeniedNotice(ctx context.Context, deniedEmail, deniedName string, at time.Time) error {
	if s.debug {
		log.Printf("[DEBUG] SendAccessDeniedNotice called: email=%s, name=%s", deniedEmail, deniedName)
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): access denied for %s", deniedEmail)
		return nil
	}

	when := at.UTC().Format(time.RFC1123)
	subject := "Learning Time: sign-in blocked for " + deniedEmail

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="content">
			<p>An account that is not on the allow-list tried to sign in.</p>
			<p><strong>Email:</strong> %s<br><strong>Name:</strong> %s<br><strong>Time:</strong> %s</p>
			<p>To grant access, add the address to ALLOWED_EMAILS for %s.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Learning Time. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(deniedEmail), html.EscapeString(deniedName), when, html.EscapeString(s.appBaseURL))

	textBody := fmt.Sprintf(`An account that is not on the allow-list tried to sign in.

Email: %s
Name: %s
Time: %s

To grant access, add the address to ALLOWED_EMAILS for %s.

---
This is an automated email from Learning Time. Please do not reply.
`, deniedEmail, deniedName, when, s.appBaseURL)

	return s.sendEmail(ctx, s.notifyEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
