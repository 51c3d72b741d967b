package notify

import (
	"context"
	"fmt"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"

	"github.com/go-mail/mail/v2"
)

// mailDialer is the part of *mail.Dialer used for sending
type mailDialer interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPSender struct {
	dialer mailDialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Channel() domain.NotificationChannel {
	return domain.ChannelSMTP
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	logger.ExternalServiceCall("SMTP", "DialAndSend", "to", msg.To, "kind", msg.Kind)
	err := s.dialer.DialAndSend(m)
	logger.ExternalServiceResult("SMTP", "DialAndSend", err)
	if err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}
