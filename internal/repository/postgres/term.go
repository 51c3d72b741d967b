package postgres

import (
	"context"
	"database/sql"
	"errors"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository"
)

type termRepository struct {
	db DBTX
}

func NewTermRepository(db DBTX) repository.TermRepository {
	return &termRepository{db: db}
}

const termColumns = `id, school_year, semester, start_date, end_date, is_active`

func (r *termRepository) CurrentActive(ctx context.Context) (*domain.AcademicTerm, error) {
	t := &domain.AcademicTerm{}
	err := r.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM academic_terms WHERE is_active LIMIT 1`).
		Scan(&t.ID, &t.SchoolYear, &t.Semester, &t.StartDate, &t.EndDate, &t.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *termRepository) GetByID(ctx context.Context, id int32) (*domain.AcademicTerm, error) {
	t := &domain.AcademicTerm{}
	err := r.db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM academic_terms WHERE id = $1`, id).
		Scan(&t.ID, &t.SchoolYear, &t.Semester, &t.StartDate, &t.EndDate, &t.IsActive)
	if err != nil {
		return nil, mapError(err, "academic term")
	}
	return t, nil
}
