package postgres

import (
	"context"
	"database/sql"
	"errors"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type organizationRepository struct {
	db DBTX
}

func NewOrganizationRepository(db DBTX) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

const organizationColumns = `id, code, name, college_id, course_id, academic_term_id, president_id, adviser_id, status, type, created_at`

func scanOrganization(row interface{ Scan(...interface{}) error }) (*domain.Organization, error) {
	o := &domain.Organization{}
	err := row.Scan(&o.ID, &o.Code, &o.Name, &o.CollegeID, &o.CourseID, &o.TermID, &o.PresidentID, &o.AdviserID, &o.Status, &o.Type, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	query := `INSERT INTO organizations (code, name, college_id, course_id, academic_term_id, president_id, adviser_id, status, type)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "organizations", "code", o.Code, "courseID", o.CourseID)
	err := r.db.QueryRowContext(ctx, query, o.Code, o.Name, o.CollegeID, o.CourseID, o.TermID, o.PresidentID, o.AdviserID, o.Status, o.Type).
		Scan(&o.ID, &o.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "organizationID", o.ID)
	return mapError(err, "organization")
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "organization")
	}
	return o, nil
}

func (r *organizationRepository) GetByPresident(ctx context.Context, accountID int32) (*domain.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE president_id = $1`, accountID))
	if err != nil {
		return nil, mapError(err, "organization")
	}
	return o, nil
}

func (r *organizationRepository) FindByCourse(ctx context.Context, courseID int32) (*domain.Organization, error) {
	return r.find(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE course_id = $1`, courseID)
}

func (r *organizationRepository) FindByCode(ctx context.Context, code string) (*domain.Organization, error) {
	return r.find(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE UPPER(code) = UPPER($1)`, code)
}

// find returns nil without error when no row matches.
func (r *organizationRepository) find(ctx context.Context, query string, arg interface{}) (*domain.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *organizationRepository) UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE organizations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("organization %d not found", id)
	}
	return nil
}

type councilRepository struct {
	db DBTX
}

func NewCouncilRepository(db DBTX) repository.CouncilRepository {
	return &councilRepository{db: db}
}

const councilColumns = `id, code, name, college_id, academic_term_id, president_id, adviser_id, status, type, created_at`

func scanCouncil(row interface{ Scan(...interface{}) error }) (*domain.Council, error) {
	c := &domain.Council{}
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.CollegeID, &c.TermID, &c.PresidentID, &c.AdviserID, &c.Status, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *councilRepository) Create(ctx context.Context, c *domain.Council) error {
	query := `INSERT INTO councils (code, name, college_id, academic_term_id, president_id, adviser_id, status, type)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "councils", "code", c.Code, "collegeID", c.CollegeID)
	err := r.db.QueryRowContext(ctx, query, c.Code, c.Name, c.CollegeID, c.TermID, c.PresidentID, c.AdviserID, c.Status, c.Type).
		Scan(&c.ID, &c.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "councilID", c.ID)
	return mapError(err, "council")
}

func (r *councilRepository) GetByID(ctx context.Context, id int32) (*domain.Council, error) {
	c, err := scanCouncil(r.db.QueryRowContext(ctx, `SELECT `+councilColumns+` FROM councils WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "council")
	}
	return c, nil
}

func (r *councilRepository) GetByPresident(ctx context.Context, accountID int32) (*domain.Council, error) {
	c, err := scanCouncil(r.db.QueryRowContext(ctx, `SELECT `+councilColumns+` FROM councils WHERE president_id = $1`, accountID))
	if err != nil {
		return nil, mapError(err, "council")
	}
	return c, nil
}

func (r *councilRepository) FindByCollege(ctx context.Context, collegeID int32) (*domain.Council, error) {
	c, err := scanCouncil(r.db.QueryRowContext(ctx, `SELECT `+councilColumns+` FROM councils WHERE college_id = $1`, collegeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *councilRepository) UpdateStatus(ctx context.Context, id int32, status domain.RecognitionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE councils SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("council %d not found", id)
	}
	return nil
}
