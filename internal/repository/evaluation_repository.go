package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradesync/internal/models"
)

// EvaluationRepository persists evaluation items, retakes and results.
type EvaluationRepository struct {
	db sqlx.ExtContext
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db sqlx.ExtContext) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// DeleteByCourse removes every result, retake and item of a course.
func (r *EvaluationRepository) DeleteByCourse(ctx context.Context, courseID int64) error {
	statements := []struct {
		what  string
		query string
	}{
		{"results", `DELETE FROM evaluation_result WHERE item_id IN (SELECT id FROM evaluation_item WHERE course_id = ?)`},
		{"retakes", `DELETE FROM evaluation_retake WHERE course_id = ?`},
		{"items", `DELETE FROM evaluation_item WHERE course_id = ?`},
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(stmt.query), courseID); err != nil {
			return fmt.Errorf("delete evaluation %s: %w", stmt.what, err)
		}
	}
	return nil
}

// InsertItem stores one hierarchy node and sets its id.
func (r *EvaluationRepository) InsertItem(ctx context.Context, item *models.EvaluationItemRecord) (int64, error) {
	query := r.db.Rebind(`INSERT INTO evaluation_item (name, course_id, parent_id, sibling_index, scale_id, formula)
	VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query,
		item.Name, item.CourseID, item.ParentID, item.SiblingIndex, item.ScaleID, item.Formula); err != nil {
		return 0, fmt.Errorf("insert evaluation item %s: %w", item.Name, err)
	}
	item.ID = id
	return id, nil
}

// InsertRetake stores a retake session and sets its id.
func (r *EvaluationRepository) InsertRetake(ctx context.Context, retake *models.RetakeRecord) (int64, error) {
	query := r.db.Rebind(`INSERT INTO evaluation_retake (course_id, excluded, taken_at) VALUES (?, ?, ?) RETURNING id`)
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query, retake.CourseID, retake.Excluded, retake.TakenAt); err != nil {
		return 0, fmt.Errorf("insert retake: %w", err)
	}
	retake.ID = id
	return id, nil
}

// InsertResult stores one grade.
func (r *EvaluationRepository) InsertResult(ctx context.Context, result models.EvaluationResult) error {
	query := r.db.Rebind(`INSERT INTO evaluation_result (item_id, retake_id, student_id, value, auto_value)
	VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		result.ItemID, result.RetakeID, result.StudentID, result.Value, result.AutoValue); err != nil {
		return fmt.Errorf("insert evaluation result: %w", err)
	}
	return nil
}

// ListItemsByCourse returns the hierarchy rows of a course ordered so that
// siblings are adjacent and in sibling order.
func (r *EvaluationRepository) ListItemsByCourse(ctx context.Context, courseID int64) ([]models.EvaluationItemRecord, error) {
	query := r.db.Rebind(`SELECT id, name, course_id, parent_id, sibling_index, scale_id, formula
	FROM evaluation_item WHERE course_id = ?
	ORDER BY parent_id IS NOT NULL, parent_id, sibling_index`)
	var items []models.EvaluationItemRecord
	if err := sqlx.SelectContext(ctx, r.db, &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list evaluation items: %w", err)
	}
	return items, nil
}

// ListResultsByCourse returns every result recorded against a course's items.
func (r *EvaluationRepository) ListResultsByCourse(ctx context.Context, courseID int64) ([]models.EvaluationResult, error) {
	query := r.db.Rebind(`SELECT er.item_id, er.retake_id, er.student_id, er.value, er.auto_value
	FROM evaluation_result er
	JOIN evaluation_item ei ON ei.id = er.item_id
	WHERE ei.course_id = ?
	ORDER BY er.item_id, er.student_id`)
	var results []models.EvaluationResult
	if err := sqlx.SelectContext(ctx, r.db, &results, query, courseID); err != nil {
		return nil, fmt.Errorf("list evaluation results: %w", err)
	}
	return results, nil
}

// CountRetakesByCourse returns the number of retake sessions stored for a course.
func (r *EvaluationRepository) CountRetakesByCourse(ctx context.Context, courseID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM evaluation_retake WHERE course_id = ?`), courseID); err != nil {
		return 0, fmt.Errorf("count retakes: %w", err)
	}
	return n, nil
}

// DeleteRetakesByCourse removes retake sessions of a course with their results.
func (r *EvaluationRepository) DeleteRetakesByCourse(ctx context.Context, courseID int64) error {
	results := r.db.Rebind(`DELETE FROM evaluation_result WHERE retake_id IN (SELECT id FROM evaluation_retake WHERE course_id = ?)`)
	if _, err := r.db.ExecContext(ctx, results, courseID); err != nil {
		return fmt.Errorf("delete retake results: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM evaluation_retake WHERE course_id = ?`), courseID); err != nil {
		return fmt.Errorf("delete retakes: %w", err)
	}
	return nil
}
