package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradesync/internal/gradebook"
	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	"github.com/noah-isme/gradesync/pkg/database"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "gradesync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Bootstrap(context.Background(), db))
	return db
}

// seedCourse provisions a course and its students, given as given/family pairs.
func seedCourse(t *testing.T, db *sqlx.DB, code string, students ...[2]string) int64 {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)
	courseID, err := store.Courses.Ensure(ctx, code)
	require.NoError(t, err)
	for _, st := range students {
		_, err := store.Students.Upsert(ctx, &models.StudentRecord{GivenName: st[0], FamilyName: st[1], CourseID: courseID})
		require.NoError(t, err)
	}
	return courseID
}

func grade(v float64) *float64 { return &v }

// termOneHierarchy builds Term 1 > {Tests: Quiz 1, Quiz 2; Homework: HW 1}.
func termOneHierarchy(t *testing.T, withTests bool) *gradebook.Hierarchy {
	t.Helper()
	h := gradebook.NewHierarchy()
	term := h.AddEvaluation("Term 1")
	col := gradebook.GradeColumnOffset
	if withTests {
		tests, err := h.AddSection(term, "Tests")
		require.NoError(t, err)
		for _, name := range []string{"Quiz 1", "Quiz 2"} {
			_, err := h.AddComponent(tests, models.EvaluationItem{Name: name, Column: col})
			require.NoError(t, err)
			col++
		}
	}
	homework, err := h.AddSection(term, "Homework")
	require.NoError(t, err)
	_, err = h.AddComponent(homework, models.EvaluationItem{Name: "HW 1", Column: col})
	require.NoError(t, err)
	return h
}

func fixtureCourse(t *testing.T, code string) models.Course {
	t.Helper()
	h := termOneHierarchy(t, true)
	return models.Course{
		Code:        code,
		Evaluations: h.Evaluations(),
		Students: []models.Student{
			{
				GivenName: "Annabel", FamilyName: "Smith", PreferredName: "Ann", CourseCode: code,
				Labels: []string{models.LabelVirtual},
				Grades: []*float64{grade(3), grade(4), nil},
			},
			{
				GivenName: "Bao", FamilyName: "Tran", PreferredName: "Bo", CourseCode: code,
				Labels: []string{models.LabelAP, models.LabelVirtual},
				Grades: []*float64{nil, grade(2), grade(1)},
			},
		},
	}
}

type itemRow struct {
	Parent       string `db:"parent"`
	Name         string `db:"name"`
	SiblingIndex int    `db:"sibling_index"`
	HasScale     bool   `db:"has_scale"`
}

type resultRow struct {
	Item    string  `db:"item"`
	Student string  `db:"student"`
	Value   float64 `db:"value"`
	Retake  bool    `db:"retake"`
}

type courseState struct {
	Items   []itemRow
	Results []resultRow
	Labels  []string
}

func loadState(t *testing.T, db *sqlx.DB, courseID int64) courseState {
	t.Helper()
	var state courseState
	require.NoError(t, db.Select(&state.Items, `SELECT COALESCE(p.name, '') AS parent, i.name, i.sibling_index,
		i.scale_id IS NOT NULL AS has_scale
		FROM evaluation_item i LEFT JOIN evaluation_item p ON p.id = i.parent_id
		WHERE i.course_id = ? ORDER BY parent, i.sibling_index`, courseID))
	require.NoError(t, db.Select(&state.Results, `SELECT i.name AS item, s.given_name AS student, r.value,
		r.retake_id IS NOT NULL AS retake
		FROM evaluation_result r
		JOIN evaluation_item i ON i.id = r.item_id
		JOIN student s ON s.id = r.student_id
		WHERE i.course_id = ? ORDER BY retake, item, student, r.value`, courseID))
	require.NoError(t, db.Select(&state.Labels, `SELECT s.given_name || ':' || l.name
		FROM student_label sl JOIN student s ON s.id = sl.student_id JOIN label l ON l.id = sl.label_id
		WHERE s.course_id = ? ORDER BY 1`, courseID))
	return state
}
