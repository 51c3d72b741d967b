package domain

import "time"

type NotificationKind string

const (
	NotificationCredentialsCreated  NotificationKind = "credentials_created"
	NotificationApplicationApproved NotificationKind = "application_approved"
	NotificationApplicationRejected NotificationKind = "application_rejected"
	NotificationVerificationCode    NotificationKind = "verification_code"
	NotificationDocumentReviewed    NotificationKind = "document_reviewed"
	NotificationDocumentResubmitted NotificationKind = "document_resubmitted"
	NotificationReviewDigest        NotificationKind = "review_digest"
)

type NotificationChannel string

const (
	ChannelSMTP     NotificationChannel = "smtp"
	ChannelSendGrid NotificationChannel = "sendgrid"
	ChannelPush     NotificationChannel = "push"
)

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// NotificationLog records one delivery attempt on one channel.
type NotificationLog struct {
	ID        int32               `json:"id"`
	ToEmail   string              `json:"to_email"`
	Kind      NotificationKind    `json:"kind"`
	Channel   NotificationChannel `json:"channel"`
	Status    DeliveryStatus      `json:"status"`
	Error     string              `json:"error,omitempty"`
	Payload   map[string]string   `json:"payload"`
	CreatedAt time.Time           `json:"created_at"`
}
