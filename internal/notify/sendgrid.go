package notify

import (
	"context"
	"fmt"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGridClient is the part of *sendgrid.Client used for sending
type sendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client    sendGridClient
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) Channel() domain.NotificationChannel {
	return domain.ChannelSendGrid
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	recipient := sgmail.NewEmail(msg.Payload[KeyName], msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, recipient, msg.Body, "")

	logger.ExternalServiceCall("SendGrid", "Send", "to", msg.To, "kind", msg.Kind)
	response, err := s.client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("SendGrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
