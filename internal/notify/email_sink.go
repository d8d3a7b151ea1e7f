package notify

import (
	"context"
	"fmt"
	"html"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSink mails high and urgent notifications to the recipient's account address.
type EmailSink struct {
	client    emailClient
	users     repository.UserRepository
	fromEmail string
	fromName  string
}

func NewEmailSink(apiKey, fromEmail, fromName string, users repository.UserRepository) *EmailSink {
	return &EmailSink{
		client:    sendgrid.NewSendClient(apiKey),
		users:     users,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *EmailSink) Name() string { return "email" }

func wantsEmail(p domain.NotificationPriority) bool {
	return p == domain.PriorityHigh || p == domain.PriorityUrgent
}

func (s *EmailSink) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	if !wantsEmail(event.Priority) {
		return nil
	}
	user, err := s.users.GetByID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("look up recipient %d: %w", event.RecipientID, err)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	htmlContent := fmt.Sprintf("<html><body><h2>%s</h2><p>%s</p></body></html>",
		html.EscapeString(event.Title), html.EscapeString(event.Message))
	message := mail.NewSingleEmail(from, event.Title, to, event.Message, htmlContent)

	logger.ExternalServiceCall("SendGrid", "Send", "to", user.Email, "kind", event.Kind)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil, "status", resp.StatusCode)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
