package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type notificationLogRepository struct {
	db DBTX
}

func NewNotificationLogRepository(db DBTX) repository.NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, n *domain.NotificationLog) error {
	logger.EnterMethod("notificationLogRepository.Create", "to", n.ToEmail, "kind", n.Kind, "channel", n.Channel)

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		logger.ExitMethodWithError("notificationLogRepository.Create", err, "reason", "failed to marshal payload")
		return err
	}

	query := `INSERT INTO notification_log (to_email, kind, channel, status, error, payload)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "notification_log", "to", n.ToEmail, "status", n.Status)
	err = r.db.QueryRowContext(ctx, query, n.ToEmail, n.Kind, n.Channel, n.Status, nullString(n.Error), payload).Scan(&n.ID, &n.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "logID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationLogRepository.Create", err, "to", n.ToEmail)
	} else {
		logger.ExitMethod("notificationLogRepository.Create", "logID", n.ID)
	}
	return err
}

func (r *notificationLogRepository) ListByEmail(ctx context.Context, email string, limit int32) ([]domain.NotificationLog, error) {
	query := `SELECT id, to_email, kind, channel, status, error, payload, created_at
	          FROM notification_log WHERE LOWER(to_email) = LOWER($1) ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.NotificationLog
	for rows.Next() {
		var n domain.NotificationLog
		var errText sql.NullString
		var payload []byte
		if err := rows.Scan(&n.ID, &n.ToEmail, &n.Kind, &n.Channel, &n.Status, &errText, &payload, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Error = errText.String
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &n.Payload); err != nil {
				logger.Warn("Failed to unmarshal notification payload", "logID", n.ID, "error", err)
			}
		}
		entries = append(entries, n)
	}
	return entries, rows.Err()
}
