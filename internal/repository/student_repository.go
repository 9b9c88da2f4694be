package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradesync/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db sqlx.ExtContext
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db sqlx.ExtContext) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByCourse returns the students enrolled in a course.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.StudentRecord, error) {
	query := r.db.Rebind(`SELECT id, preferred_name, given_name, family_name, course_id, birth_date
	FROM student WHERE course_id = ? ORDER BY family_name, given_name`)
	var students []models.StudentRecord
	if err := sqlx.SelectContext(ctx, r.db, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// UpdatePreferredName overwrites the preferred name of a student.
func (r *StudentRepository) UpdatePreferredName(ctx context.Context, id int64, name string) error {
	query := r.db.Rebind(`UPDATE student SET preferred_name = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, name, id); err != nil {
		return fmt.Errorf("update preferred name: %w", err)
	}
	return nil
}

// Upsert inserts a student or refreshes the birth date of the existing row
// sharing its natural key. The row id is returned in both cases.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.StudentRecord) (int64, error) {
	query := r.db.Rebind(`INSERT INTO student (given_name, family_name, course_id, birth_date)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (given_name, family_name, course_id)
	DO UPDATE SET birth_date = COALESCE(excluded.birth_date, student.birth_date)
	RETURNING id`)
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query, student.GivenName, student.FamilyName, student.CourseID, student.BirthDate); err != nil {
		return 0, fmt.Errorf("upsert student: %w", err)
	}
	student.ID = id
	return id, nil
}
