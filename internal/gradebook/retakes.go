package gradebook

import (
	"strings"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
)

// Retake sheet layout.
const (
	retakeTimeColumn       = 0
	retakeCourseColumn     = 1
	retakeStudentColumn    = 3
	retakeEvaluationColumn = 4
	retakeSectionColumn    = 5
	retakeFirstGradeColumn = 6
	retakeGradesPerRow     = 4
)

// ExcludedMarker flags a retake that must not count.
const ExcludedMarker = " (x)"

// ReadRetakes parses the retake sheet. Rows without a timestamp, course,
// evaluation number or section are skipped. A following row with an empty
// timestamp continues the grade list.
func ReadRetakes(sheet *spreadsheet.Sheet) []models.Retake {
	var retakes []models.Retake
	for row := 1; row < sheet.UsedRows(); row++ {
		stamp := sheet.Cell(row, retakeTimeColumn)
		if stamp.Kind != spreadsheet.KindDate {
			continue
		}
		course := sheet.Text(row, retakeCourseColumn)
		if course == "" {
			continue
		}
		evaluation, ok := sheet.Number(row, retakeEvaluationColumn)
		if !ok {
			continue
		}
		section := sheet.Text(row, retakeSectionColumn)
		if section == "" {
			continue
		}

		grades := retakeGrades(sheet, row)
		if sheet.Cell(row+1, retakeTimeColumn).Kind == spreadsheet.KindEmpty {
			grades = append(grades, retakeGrades(sheet, row+1)...)
		}

		name := sheet.Text(row, retakeStudentColumn)
		excluded := strings.HasSuffix(name, ExcludedMarker)
		retakes = append(retakes, models.Retake{
			Row:           row,
			TakenAt:       stamp.Time,
			CourseCode:    course,
			PreferredName: strings.TrimSpace(strings.TrimSuffix(name, ExcludedMarker)),
			Excluded:      excluded,
			Evaluation:    int(evaluation),
			Section:       section,
			Grades:        grades,
		})
	}
	return retakes
}

func retakeGrades(sheet *spreadsheet.Sheet, row int) []float64 {
	var grades []float64
	for i := 0; i < retakeGradesPerRow; i++ {
		n, ok := sheet.Number(row, retakeFirstGradeColumn+i)
		if !ok {
			break
		}
		grades = append(grades, n)
	}
	return grades
}
