package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradesync/internal/models"
)

// CourseRepository manages course rows.
type CourseRepository struct {
	db sqlx.ExtContext
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db sqlx.ExtContext) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByCode returns the course with the given code or sql.ErrNoRows.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.CourseRecord, error) {
	query := r.db.Rebind(`SELECT id, code, name FROM course WHERE code = ?`)
	var course models.CourseRecord
	if err := sqlx.GetContext(ctx, r.db, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// Ensure inserts the course when missing and returns its id.
func (r *CourseRepository) Ensure(ctx context.Context, code string) (int64, error) {
	insert := r.db.Rebind(`INSERT INTO course (code) VALUES (?) ON CONFLICT (code) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, insert, code); err != nil {
		return 0, fmt.Errorf("ensure course: %w", err)
	}
	course, err := r.FindByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("load course %s: %w", code, err)
	}
	return course.ID, nil
}

// List returns every course ordered by code.
func (r *CourseRepository) List(ctx context.Context) ([]models.CourseRecord, error) {
	var courses []models.CourseRecord
	if err := sqlx.SelectContext(ctx, r.db, &courses, `SELECT id, code, name FROM course ORDER BY code`); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
