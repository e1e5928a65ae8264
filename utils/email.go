package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog"

	"go-storefront/models"
)

// EmailService sends transactional mail through Postmark. When no API token
// is configured the service degrades to a logged no-op so the server can run
// without outbound mail.
type EmailService struct {
	client *postmark.Client
	sender string
	log    zerolog.Logger
}

// NewEmailService reads POSTMARK_API_TOKEN and EMAIL_SENDER from the
// environment.
func NewEmailService(log zerolog.Logger) *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		log.Warn().Msg("POSTMARK_API_TOKEN not set, outbound email disabled")
		return &EmailService{log: log}
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: os.Getenv("EMAIL_SENDER"),
		log:    log,
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.client == nil {
		es.log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email disabled, skipping send")
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation to the user.
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br><br>Thank you for shopping with us!",
		name,
		order.ID.Hex(),
		order.Total,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
