package gradebook

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

var courseCodePattern = regexp.MustCompile(`[A-Z]{3}[1-4][A-Z][0-9]?`)

// IsCourseSheet reports whether a sheet name carries a course code.
func IsCourseSheet(name string) bool {
	return courseCodePattern.MatchString(name)
}

// ReadCourses decodes every course sheet of the workbook. A sheet whose
// students carry course overrides yields several courses, and courses that
// end up with the same code are merged. A code whose sheets disagree on the
// evaluation hierarchy is left out and reported in the returned error.
func ReadCourses(wb *spreadsheet.Workbook, markers []LabelMarker) ([]models.Course, error) {
	if markers == nil {
		markers = DefaultLabelMarkers
	}
	var courses []models.Course
	index := make(map[string]int)
	conflicts := make(map[string]bool)
	for _, sheet := range wb.Sheets {
		if !IsCourseSheet(sheet.Name) {
			continue
		}
		h := DecodeHierarchy(sheet)
		students := ExtractStudents(sheet, sheet.Name, h, markers)
		for _, course := range SplitCourses(sheet.Name, h, students) {
			i, ok := index[course.Code]
			if !ok {
				index[course.Code] = len(courses)
				courses = append(courses, course)
				continue
			}
			if !sameHierarchy(courses[i].Evaluations, course.Evaluations) {
				conflicts[course.Code] = true
				continue
			}
			courses[i].Students = append(courses[i].Students, course.Students...)
		}
	}

	var errs error
	merged := courses[:0]
	for _, course := range courses {
		if conflicts[course.Code] {
			errs = multierr.Append(errs, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("course %s: sheets disagree on the evaluation hierarchy", course.Code)))
			continue
		}
		merged = append(merged, course)
	}
	return merged, errs
}

// sameHierarchy compares evaluation, section and component names in order.
// Leaf columns may differ between sheets.
func sameHierarchy(a, b []models.Evaluation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || len(a[i].Sections) != len(b[i].Sections) {
			return false
		}
		for j, sa := range a[i].Sections {
			sb := b[i].Sections[j]
			if sa.Name != sb.Name || len(sa.Components) != len(sb.Components) {
				return false
			}
			for k := range sa.Components {
				if sa.Components[k].Name != sb.Components[k].Name {
					return false
				}
			}
		}
	}
	return true
}
