package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StudentLabel pairs a student id with one of its label names.
type StudentLabel struct {
	StudentID int64  `db:"student_id"`
	Name      string `db:"name"`
}

// LabelRepository manages labels and their student associations.
type LabelRepository struct {
	db sqlx.ExtContext
}

// NewLabelRepository constructs a LabelRepository.
func NewLabelRepository(db sqlx.ExtContext) *LabelRepository {
	return &LabelRepository{db: db}
}

// Ensure creates the label if needed and returns its id.
func (r *LabelRepository) Ensure(ctx context.Context, name string) (int64, error) {
	insert := r.db.Rebind(`INSERT INTO label (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, insert, name); err != nil {
		return 0, fmt.Errorf("ensure label: %w", err)
	}
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, r.db.Rebind(`SELECT id FROM label WHERE name = ?`), name); err != nil {
		return 0, fmt.Errorf("load label %s: %w", name, err)
	}
	return id, nil
}

// Attach links a label to a student; existing links are left alone.
func (r *LabelRepository) Attach(ctx context.Context, studentID, labelID int64) error {
	query := r.db.Rebind(`INSERT INTO student_label (student_id, label_id) VALUES (?, ?)
	ON CONFLICT (student_id, label_id) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, studentID, labelID); err != nil {
		return fmt.Errorf("attach label: %w", err)
	}
	return nil
}

// ListByCourse returns the labels of every student of a course.
func (r *LabelRepository) ListByCourse(ctx context.Context, courseID int64) ([]StudentLabel, error) {
	query := r.db.Rebind(`SELECT sl.student_id, l.name
	FROM student_label sl
	JOIN label l ON l.id = sl.label_id
	JOIN student s ON s.id = sl.student_id
	WHERE s.course_id = ?
	ORDER BY sl.student_id, l.name`)
	var labels []StudentLabel
	if err := sqlx.SelectContext(ctx, r.db, &labels, query, courseID); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}
