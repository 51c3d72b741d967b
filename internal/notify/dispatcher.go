package notify

import (
	"context"
	"errors"
	"fmt"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

// Dispatcher renders a notification, fans it out to every configured
// channel and records one log entry per attempt.
type Dispatcher struct {
	senders     []Sender
	logs        repository.NotificationLogRepository
	institution string
}

func NewDispatcher(logs repository.NotificationLogRepository, institution string, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		senders:     senders,
		logs:        logs,
		institution: institution,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) error {
	logger.EnterMethod("Dispatcher.Notify", "to", to, "kind", kind)

	p := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		p[k] = v
	}
	if _, ok := p[KeyInstitution]; !ok && d.institution != "" {
		p[KeyInstitution] = d.institution
	}

	msg, err := Render(kind, p)
	if err != nil {
		logger.ExitMethodWithError("Dispatcher.Notify", err)
		return err
	}
	msg.To = to

	var errs []error
	attempted := 0
	for _, sender := range d.senders {
		if msg.Sensitive && sender.Channel() == domain.ChannelPush {
			continue
		}
		attempted++
		sendErr := sender.Send(ctx, msg)
		d.record(ctx, msg, sender.Channel(), sendErr)
		if sendErr != nil {
			logger.Error("Notification delivery failed", "channel", sender.Channel(), "to", to, "kind", kind, "error", sendErr)
			errs = append(errs, fmt.Errorf("%s: %w", sender.Channel(), sendErr))
		}
	}

	if attempted == 0 {
		logger.Warn("No notification channel accepted the message", "to", to, "kind", kind)
	}
	err = errors.Join(errs...)
	if err != nil {
		logger.ExitMethodWithError("Dispatcher.Notify", err, "to", to)
	} else {
		logger.ExitMethod("Dispatcher.Notify", "to", to, "channels", attempted)
	}
	return err
}

func (d *Dispatcher) record(ctx context.Context, msg Message, channel domain.NotificationChannel, sendErr error) {
	if d.logs == nil {
		return
	}
	entry := &domain.NotificationLog{
		ToEmail: msg.To,
		Kind:    msg.Kind,
		Channel: channel,
		Status:  domain.DeliverySent,
		Payload: redact(msg.Payload),
	}
	if sendErr != nil {
		entry.Status = domain.DeliveryFailed
		entry.Error = sendErr.Error()
	}
	if err := d.logs.Create(ctx, entry); err != nil {
		logger.Warn("Failed to record notification attempt", "to", msg.To, "channel", channel, "error", err)
	}
}
