package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db    *sql.DB
	repos *repository.Repositories
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepositories(db),
	}
}

func newRepositories(q DBTX) *repository.Repositories {
	return &repository.Repositories{
		Applications:     NewApplicationRepository(q),
		Accounts:         NewAccountRepository(q),
		Colleges:         NewCollegeRepository(q),
		Courses:          NewCourseRepository(q),
		Organizations:    NewOrganizationRepository(q),
		Councils:         NewCouncilRepository(q),
		Terms:            NewTermRepository(q),
		Officers:         NewOfficerRepository(q),
		Proposals:        NewProposalRepository(q),
		Documents:        NewDocumentRepository(q),
		Submissions:      NewSubmissionRepository(q),
		NotificationLogs: NewNotificationLogRepository(q),
	}
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// WithinTx runs fn in a single database transaction. Any error returned by
// fn, or a panic, rolls the transaction back.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Error("Transaction rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(ctx, newRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// conflictMessages maps unique constraints to user-facing messages.
var conflictMessages = map[string]string{
	"accounts_username_key":          "username is already taken",
	"accounts_email_key":             "an account with this email already exists",
	"organizations_code_key":         "organization code is already taken",
	"organizations_course_id_key":    "an organization already exists for this course",
	"councils_college_id_key":        "a council already exists for this college",
	"councils_code_key":              "council code is already taken",
	"student_officials_position_key": "position is already filled for this term",
	"student_officials_student_key":  "student already holds a position in this entity for this term",
	"event_documents_type_key":       "document type already submitted for this proposal",
	"academic_terms_one_active":      "another academic term is already active",
}

// mapError translates driver errors into domain errors. what names the
// record for not-found messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Error{Kind: domain.KindNotFound, Message: what + " not found", Err: err}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		msg, ok := conflictMessages[pqErr.Constraint]
		if !ok {
			msg = what + " already exists"
		}
		return &domain.Error{Kind: domain.KindConflict, Message: msg, Err: err}
	}
	return err
}

// isUniqueViolation reports whether err violates the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
