package gradebook

import (
	"strings"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
)

// Student metadata columns.
const (
	PreferredNameColumn = 0
	LabelsColumn        = 1
	FamilyNameColumn    = 2
	GivenNameColumn     = 3
	CourseColumn        = 4
)

// LabelMarker maps a substring of the labels cell to a label name.
type LabelMarker struct {
	Marker string
	Label  string
}

// DefaultLabelMarkers are the markers teachers use in the labels column.
var DefaultLabelMarkers = []LabelMarker{
	{Marker: "V", Label: models.LabelVirtual},
	{Marker: "AP", Label: models.LabelAP},
}

// ExtractStudents reads every body row with a preferred name. Grades are read
// positionally from the hierarchy's leaf columns; only numeric cells count.
func ExtractStudents(sheet *spreadsheet.Sheet, nominalCode string, h *Hierarchy, markers []LabelMarker) []models.Student {
	columns := h.Columns()

	var students []models.Student
	for row := FirstStudentRow; row < sheet.UsedRows(); row++ {
		preferred := sheet.Text(row, PreferredNameColumn)
		if preferred == "" {
			continue
		}

		code := sheet.Text(row, CourseColumn)
		if code == "" {
			code = nominalCode
		}

		grades := make([]*float64, len(columns))
		for i, col := range columns {
			if n, ok := sheet.Number(row, col); ok {
				v := n
				grades[i] = &v
			}
		}

		students = append(students, models.Student{
			Row:           row,
			GivenName:     sheet.Text(row, GivenNameColumn),
			FamilyName:    sheet.Text(row, FamilyNameColumn),
			PreferredName: preferred,
			CourseCode:    code,
			Labels:        deriveLabels(sheet.Text(row, LabelsColumn), markers),
			Grades:        grades,
		})
	}
	return students
}

// SplitCourses groups students by effective course code. Each course gets its
// own copy of the evaluation list.
func SplitCourses(nominalCode string, h *Hierarchy, students []models.Student) []models.Course {
	evaluations := h.Evaluations()

	var courses []models.Course
	index := make(map[string]int)
	for _, st := range students {
		code := st.CourseCode
		if code == "" {
			code = nominalCode
		}
		i, ok := index[code]
		if !ok {
			i = len(courses)
			index[code] = i
			courses = append(courses, models.Course{Code: code, Evaluations: models.CloneEvaluations(evaluations)})
		}
		courses[i].Students = append(courses[i].Students, st)
	}
	return courses
}

func deriveLabels(cell string, markers []LabelMarker) []string {
	var labels []string
	for _, m := range markers {
		if m.Marker != "" && strings.Contains(cell, m.Marker) {
			labels = append(labels, m.Label)
		}
	}
	return models.LabelSet(labels...)
}
