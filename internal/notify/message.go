package notify

import (
	"context"

	"orggov-backend/internal/domain"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Kind    domain.NotificationKind
	Subject string
	Body    string
	Payload map[string]string
	// Sensitive messages carry secrets and are only sent to a mailbox.
	Sensitive bool
}

// Sender delivers messages on one channel.
type Sender interface {
	Channel() domain.NotificationChannel
	Send(ctx context.Context, msg Message) error
}

// Notifier is the contract consumed by the workflow engines. Callers treat
// a returned error as informational only.
type Notifier interface {
	Notify(ctx context.Context, to string, kind domain.NotificationKind, payload map[string]string) error
}

// Payload keys shared by the templates and the services.
const (
	KeyName          = "name"
	KeyUsername      = "username"
	KeyPassword      = "password"
	KeyRole          = "role"
	KeyEntityName    = "entity_name"
	KeyEntityCode    = "entity_code"
	KeyReason        = "reason"
	KeyCode          = "code"
	KeyExpiresIn     = "expires_in"
	KeyDocumentType  = "document_type"
	KeyProposalTitle = "proposal_title"
	KeyStage         = "stage"
	KeyDecision      = "decision"
	KeyPendingApps   = "pending_applications"
	KeyAwaitingOsas  = "awaiting_osas"
	KeyInstitution   = "institution"
)

// secretKeys are never written to the notification log.
var secretKeys = map[string]bool{
	KeyPassword: true,
	KeyCode:     true,
}

func redact(payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if secretKeys[k] {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}
