package notify

import (
	"context"
	"fmt"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messagingClient is the part of *messaging.Client used for sending
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSender publishes status updates to a Firebase Cloud Messaging topic
// that reviewer dashboards subscribe to. Delivery is best effort.
type PushSender struct {
	client messagingClient
	topic  string
}

func NewPushSender(ctx context.Context, projectID, credentialsFile, topic string) (*PushSender, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &PushSender{client: client, topic: topic}, nil
}

func (s *PushSender) Channel() domain.NotificationChannel {
	return domain.ChannelPush
}

func (s *PushSender) Send(ctx context.Context, msg Message) error {
	data := map[string]string{"kind": string(msg.Kind)}
	for k, v := range redact(msg.Payload) {
		data[k] = v
	}
	message := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: msg.Subject,
		},
		Data: data,
	}

	logger.ExternalServiceCall("FCM", "Send", "topic", s.topic, "kind", msg.Kind)
	id, err := s.client.Send(ctx, message)
	logger.ExternalServiceResult("FCM", "Send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to publish push notification: %w", err)
	}
	return nil
}
