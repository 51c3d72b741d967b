package postgres

import (
	"context"
	"database/sql"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type applicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `id, application_type, status, college_id, course_id, COALESCE(org_code, ''), COALESCE(org_name, ''),
	president_name, president_email, adviser_name, adviser_email, verified_by, verified_email,
	rejection_reason, reviewed_by, reviewed_at, created_at`

func scanApplication(row interface{ Scan(...interface{}) error }) (*domain.Application, error) {
	a := &domain.Application{}
	var courseID, reviewedBy sql.NullInt32
	var reason sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(&a.ID, &a.Type, &a.Status, &a.CollegeID, &courseID, &a.OrgCode, &a.OrgName,
		&a.PresidentName, &a.PresidentEmail, &a.AdviserName, &a.AdviserEmail, &a.VerifiedBy, &a.VerifiedEmail,
		&reason, &reviewedBy, &reviewedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if courseID.Valid {
		a.CourseID = &courseID.Int32
	}
	if reason.Valid {
		a.RejectionReason = &reason.String
	}
	if reviewedBy.Valid {
		a.ReviewedBy = &reviewedBy.Int32
	}
	if reviewedAt.Valid {
		a.ReviewedAt = &reviewedAt.Time
	}
	return a, nil
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	query := `INSERT INTO applications (application_type, status, college_id, course_id, org_code, org_name,
	          president_name, president_email, adviser_name, adviser_email, verified_by, verified_email)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "applications", "type", a.Type, "collegeID", a.CollegeID)
	if a.Status == "" {
		a.Status = domain.ApplicationStatusPendingReview
	}
	err := r.db.QueryRowContext(ctx, query, a.Type, a.Status, a.CollegeID, a.CourseID, nullString(a.OrgCode), nullString(a.OrgName),
		a.PresidentName, a.PresidentEmail, a.AdviserName, a.AdviserEmail, a.VerifiedBy, a.VerifiedEmail).Scan(&a.ID, &a.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "applicationID", a.ID)
	return mapError(err, "application")
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "application")
	}
	return a, nil
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "application")
	}
	return a, nil
}

func (r *applicationRepository) MarkDecided(ctx context.Context, a *domain.Application) (bool, error) {
	query := `UPDATE applications SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4
	          WHERE id = $5 AND status = 'pending_review'`
	logger.DatabaseCall("UPDATE", "applications", "applicationID", a.ID, "status", a.Status)
	res, err := r.db.ExecContext(ctx, query, a.Status, a.RejectionReason, a.ReviewedBy, a.ReviewedAt, a.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) CountByStatus(ctx context.Context, status domain.ApplicationStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM applications WHERE status = $1`, status).Scan(&n)
	return n, err
}
