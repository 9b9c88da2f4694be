package gradebook

import (
	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
	"github.com/noah-isme/gradesync/pkg/forest"
)

// Header rows of a gradebook sheet and the first grade column.
const (
	EvaluationRow     = 0
	SectionRow        = 1
	ComponentRow      = 2
	FirstStudentRow   = 3
	GradeColumnOffset = 5
)

// DecodeHierarchy scans the three header rows left to right and rebuilds the
// evaluation tree. Blank header cells continue the current evaluation or
// section; section and component headers without an enclosing parent are
// dropped.
func DecodeHierarchy(sheet *spreadsheet.Sheet) *Hierarchy {
	h := NewHierarchy()

	var evaluation, section *forest.Handle
	for col := GradeColumnOffset; col < sheet.UsedCols(); col++ {
		evaluationName := sheet.Text(EvaluationRow, col)
		sectionName := sheet.Text(SectionRow, col)
		componentName := sheet.Text(ComponentRow, col)

		if evaluationName != "" {
			e := h.AddEvaluation(evaluationName)
			evaluation, section = &e, nil
		}

		if sectionName != "" && evaluation != nil {
			s, err := h.AddSection(*evaluation, sectionName)
			if err == nil {
				section = &s
			}
		}

		if componentName != "" && section != nil {
			if _, err := h.AddComponent(*section, models.EvaluationItem{Name: componentName, Column: col}); err != nil {
				continue
			}
		}
	}
	return h
}
