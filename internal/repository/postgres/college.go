package postgres

import (
	"context"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository"
)

type collegeRepository struct {
	db DBTX
}

func NewCollegeRepository(db DBTX) repository.CollegeRepository {
	return &collegeRepository{db: db}
}

func (r *collegeRepository) GetByID(ctx context.Context, id int32) (*domain.College, error) {
	c := &domain.College{}
	err := r.db.QueryRowContext(ctx, `SELECT id, code, name FROM colleges WHERE id = $1`, id).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		return nil, mapError(err, "college")
	}
	return c, nil
}

func (r *collegeRepository) LockByID(ctx context.Context, id int32) (*domain.College, error) {
	c := &domain.College{}
	err := r.db.QueryRowContext(ctx, `SELECT id, code, name FROM colleges WHERE id = $1 FOR UPDATE`, id).Scan(&c.ID, &c.Code, &c.Name)
	if err != nil {
		return nil, mapError(err, "college")
	}
	return c, nil
}

type courseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) repository.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id int32) (*domain.Course, error) {
	c := &domain.Course{}
	err := r.db.QueryRowContext(ctx, `SELECT id, college_id, code, name FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.CollegeID, &c.Code, &c.Name)
	if err != nil {
		return nil, mapError(err, "course")
	}
	return c, nil
}
