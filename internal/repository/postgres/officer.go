package postgres

import (
	"context"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/repository"
)

type officerRepository struct {
	db DBTX
}

func NewOfficerRepository(db DBTX) repository.OfficerRepository {
	return &officerRepository{db: db}
}

func (r *officerRepository) Create(ctx context.Context, o *domain.StudentOfficial) error {
	query := `INSERT INTO student_officials (owner_type, owner_id, academic_term_id, student_number, full_name, position, email, picture_path)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	logger.DatabaseCall("INSERT", "student_officials", "ownerType", o.OwnerType, "ownerID", o.OwnerID, "position", o.Position)
	err := r.db.QueryRowContext(ctx, query, o.OwnerType, o.OwnerID, o.TermID, o.StudentNumber, o.FullName, o.Position,
		nullString(o.Email), nullString(o.PicturePath)).Scan(&o.ID, &o.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "officerID", o.ID)
	return mapError(err, "officer")
}

func (r *officerRepository) FindSeats(ctx context.Context, studentNumber string, termID int32, ownerType domain.OwnerType) ([]domain.OfficerSeat, error) {
	query := `SELECT so.position, so.owner_id, COALESCE(o.name, c.name, ''), so.owner_type
	          FROM student_officials so
	          LEFT JOIN organizations o ON so.owner_type = 'organization' AND o.id = so.owner_id
	          LEFT JOIN councils c ON so.owner_type = 'council' AND c.id = so.owner_id
	          WHERE so.student_number = $1 AND so.academic_term_id = $2 AND so.owner_type = $3
	          ORDER BY so.id`
	rows, err := r.db.QueryContext(ctx, query, studentNumber, termID, ownerType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []domain.OfficerSeat
	for rows.Next() {
		var s domain.OfficerSeat
		if err := rows.Scan(&s.Position, &s.OwnerID, &s.OwnerName, &s.OwnerType); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *officerRepository) PositionTaken(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32, position string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM student_officials
	          WHERE owner_type = $1 AND owner_id = $2 AND academic_term_id = $3 AND position = $4)`
	var taken bool
	err := r.db.QueryRowContext(ctx, query, ownerType, ownerID, termID, position).Scan(&taken)
	return taken, err
}

func (r *officerRepository) ListByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID, termID int32) ([]domain.StudentOfficial, error) {
	query := `SELECT id, owner_type, owner_id, academic_term_id, student_number, full_name, position,
	          COALESCE(email, ''), COALESCE(picture_path, ''), created_at
	          FROM student_officials WHERE owner_type = $1 AND owner_id = $2 AND academic_term_id = $3 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerType, ownerID, termID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []domain.StudentOfficial
	for rows.Next() {
		var o domain.StudentOfficial
		if err := rows.Scan(&o.ID, &o.OwnerType, &o.OwnerID, &o.TermID, &o.StudentNumber, &o.FullName, &o.Position,
			&o.Email, &o.PicturePath, &o.CreatedAt); err != nil {
			return nil, err
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}
