package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type submissionRepository struct {
	db DBTX
}

func NewSubmissionRepository(db DBTX) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, s *domain.PendingSubmission) error {
	draft, err := json.Marshal(s.Draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	query := `INSERT INTO pending_submissions (token, draft, verified_email, code_hash, attempts, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	logger.DatabaseCall("INSERT", "pending_submissions", "expiresAt", s.ExpiresAt)
	err = r.db.QueryRowContext(ctx, query, s.Token, draft, s.VerifiedEmail, s.CodeHash, s.Attempts, s.ExpiresAt).Scan(&s.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err)
	return mapError(err, "pending submission")
}

func (r *submissionRepository) GetForUpdate(ctx context.Context, token string) (*domain.PendingSubmission, error) {
	query := `SELECT token, draft, verified_email, code_hash, attempts, expires_at, created_at
	          FROM pending_submissions WHERE token = $1 FOR UPDATE`
	s := &domain.PendingSubmission{}
	var draft []byte
	err := r.db.QueryRowContext(ctx, query, token).Scan(&s.Token, &draft, &s.VerifiedEmail, &s.CodeHash, &s.Attempts, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "pending submission")
	}
	if err := json.Unmarshal(draft, &s.Draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return s, nil
}

func (r *submissionRepository) UpdateAttempts(ctx context.Context, token string, attempts int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE pending_submissions SET attempts = $1 WHERE token = $2`, attempts, token)
	return err
}

func (r *submissionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_submissions WHERE token = $1`, token)
	return err
}

func (r *submissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	logger.DatabaseCall("DELETE", "pending_submissions", "before", now)
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_submissions WHERE expires_at <= $1`, now)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err)
	return n, err
}
