package models

import (
	"errors"
	"time"
)

// Default scale names seeded by the schema bootstrap.
const (
	ScaleLevel      = "Level"
	ScalePercentage = "Percentage"
)

// ErrInvalidItem flags an evaluation item that breaks the leaf-only rules.
var ErrInvalidItem = errors.New("invalid evaluation item")

// EvaluationItem is the payload of one node of the evaluation hierarchy.
// Depth gives the role: roots are evaluations, their children sections,
// and grandchildren leaf components.
type EvaluationItem struct {
	LocalIndex uint32
	Name       string
	ScaleID    *int64
	Formula    *string
	// Column is the source spreadsheet column of a leaf, -1 otherwise.
	Column int
}

// Validate enforces that only leaves carry a scale or formula and that a
// formula always comes with a scale.
func (i EvaluationItem) Validate(leaf bool) error {
	if !leaf && (i.ScaleID != nil || i.Formula != nil) {
		return ErrInvalidItem
	}
	if i.Formula != nil && i.ScaleID == nil {
		return ErrInvalidItem
	}
	return nil
}

// Evaluation is a top-level item with its ordered sections.
type Evaluation struct {
	Index    int
	Name     string
	Sections []Section
}

// Section groups leaf components under an evaluation.
type Section struct {
	Index      int
	Name       string
	Components []Component
}

// Component is a leaf item; Index is its position among all leaves of the course.
type Component struct {
	Index   int
	Column  int
	Name    string
	ScaleID *int64
	Formula *string
}

// CloneEvaluations deep-copies an evaluation list.
func CloneEvaluations(src []Evaluation) []Evaluation {
	if src == nil {
		return nil
	}
	out := make([]Evaluation, len(src))
	for i, e := range src {
		out[i] = Evaluation{Index: e.Index, Name: e.Name, Sections: make([]Section, len(e.Sections))}
		for j, s := range e.Sections {
			comps := make([]Component, len(s.Components))
			copy(comps, s.Components)
			out[i].Sections[j] = Section{Index: s.Index, Name: s.Name, Components: comps}
		}
	}
	return out
}

// EvaluationItemRecord mirrors a row of the evaluation_item table.
type EvaluationItemRecord struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	CourseID     int64   `db:"course_id" json:"course_id"`
	ParentID     *int64  `db:"parent_id" json:"parent_id,omitempty"`
	SiblingIndex int     `db:"sibling_index" json:"sibling_index"`
	ScaleID      *int64  `db:"scale_id" json:"scale_id,omitempty"`
	Formula      *string `db:"formula" json:"formula,omitempty"`
}

// EvaluationResult mirrors a row of the evaluation_result table.
type EvaluationResult struct {
	ItemID    int64    `db:"item_id" json:"item_id"`
	RetakeID  *int64   `db:"retake_id" json:"retake_id,omitempty"`
	StudentID int64    `db:"student_id" json:"student_id"`
	Value     *float64 `db:"value" json:"value,omitempty"`
	AutoValue *float64 `db:"auto_value" json:"auto_value,omitempty"`
}

// Scale is a grading scale a leaf item is measured against.
type Scale struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Precision int     `db:"decimals" json:"decimals"`
	Min       float64 `db:"min" json:"min"`
	Max       float64 `db:"max" json:"max"`
}

// Retake is one row of the retake sheet.
type Retake struct {
	Row           int
	TakenAt       time.Time
	CourseCode    string
	PreferredName string
	Excluded      bool
	Evaluation    int
	Section       string
	Grades        []float64
}

// RetakeRecord mirrors a row of the evaluation_retake table.
type RetakeRecord struct {
	ID       int64     `db:"id" json:"id"`
	CourseID int64     `db:"course_id" json:"course_id"`
	Excluded bool      `db:"excluded" json:"excluded"`
	TakenAt  time.Time `db:"taken_at" json:"taken_at"`
}
