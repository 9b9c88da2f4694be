package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

func courseSheet(body ...[]any) *spreadsheet.Sheet {
	rows := [][]any{
		header("Term 1", "", ""),
		header("Tests", "", "Homework"),
		header("Quiz 1", "Quiz 2", "HW 1"),
	}
	return buildSheet("ENG4U1", append(rows, body...)...)
}

func TestExtractStudentsPositionalGrades(t *testing.T) {
	sheet := courseSheet(
		row(meta("Ann", "", "Smith", "Annabel", ""), 3, 2.5, 4),
		row(meta("Bo", "V", "Tran", "Bao", ""), "abs", nil, spreadsheet.ErrorCell("#DIV/0!")),
	)
	h := DecodeHierarchy(sheet)

	students := ExtractStudents(sheet, sheet.Name, h, DefaultLabelMarkers)

	require.Len(t, students, 2)
	ann := students[0]
	assert.Equal(t, "Annabel", ann.GivenName)
	assert.Equal(t, "Smith", ann.FamilyName)
	assert.Equal(t, "Ann", ann.PreferredName)
	assert.Equal(t, "ENG4U1", ann.CourseCode)
	require.Len(t, ann.Grades, h.LeafCount())
	assert.Equal(t, 3.0, *ann.Grades[0])
	assert.Equal(t, 2.5, *ann.Grades[1])
	assert.Equal(t, 4.0, *ann.Grades[2])

	bo := students[1]
	require.Len(t, bo.Grades, 3)
	assert.Nil(t, bo.Grades[0])
	assert.Nil(t, bo.Grades[1])
	assert.Nil(t, bo.Grades[2])
	assert.Equal(t, []string{models.LabelVirtual}, bo.Labels)
}

func TestExtractStudentsSkipsRowsWithoutPreferredName(t *testing.T) {
	sheet := courseSheet(
		row(meta("", "AP", "Ghost", "Gary", "ENG4U2"), 1, 2, 3),
		row(meta("", "", "", "", "")),
		row(meta("Cy", "", "Ng", "Cyrus", ""), 1),
	)
	h := DecodeHierarchy(sheet)

	students := ExtractStudents(sheet, sheet.Name, h, DefaultLabelMarkers)

	require.Len(t, students, 1)
	assert.Equal(t, "Cy", students[0].PreferredName)
	assert.Equal(t, 5, students[0].Row)
	assert.Equal(t, 1.0, *students[0].Grades[0])
	assert.Nil(t, students[0].Grades[2])
}

func TestExtractStudentsReadsLeafColumnsNotNeighbours(t *testing.T) {
	sheet := buildSheet("ENG4U1",
		header("Term 1", "", "", ""),
		header("Tests", "", "", ""),
		header("Quiz 1", "notes", "", "Quiz 2"),
		row(meta("Di", "", "Roy", "Diane", ""), 10, 99, 98, 20),
	)
	h := DecodeHierarchy(sheet)
	require.Equal(t, []int{5, 6, 8}, h.Columns())

	students := ExtractStudents(sheet, sheet.Name, h, DefaultLabelMarkers)

	require.Len(t, students, 1)
	grades := students[0].Grades
	require.Len(t, grades, 3)
	assert.Equal(t, 10.0, *grades[0])
	assert.Equal(t, 99.0, *grades[1])
	assert.Equal(t, 20.0, *grades[2])
}

func TestExtractStudentsDerivesLabelSet(t *testing.T) {
	sheet := courseSheet(
		row(meta("Ed", "V AP", "Li", "Edward", "")),
		row(meta("Fay", "AP", "Ko", "Fay", "")),
		row(meta("Gus", "", "Oh", "Gus", "")),
	)
	h := DecodeHierarchy(sheet)

	students := ExtractStudents(sheet, sheet.Name, h, DefaultLabelMarkers)

	require.Len(t, students, 3)
	assert.Equal(t, []string{models.LabelAP, models.LabelVirtual}, students[0].Labels)
	assert.True(t, students[1].HasLabel(models.LabelAP))
	assert.False(t, students[1].HasLabel(models.LabelVirtual))
	assert.Empty(t, students[2].Labels)
}

func TestSplitCoursesFansOutOverrides(t *testing.T) {
	sheet := courseSheet(
		row(meta("Ann", "", "Smith", "Annabel", ""), 1),
		row(meta("Bo", "", "Tran", "Bao", "ENG4U2"), 2),
		row(meta("Cy", "", "Ng", "Cyrus", ""), 3),
	)
	h := DecodeHierarchy(sheet)
	students := ExtractStudents(sheet, sheet.Name, h, DefaultLabelMarkers)

	courses := SplitCourses(sheet.Name, h, students)

	require.Len(t, courses, 2)
	assert.Equal(t, "ENG4U1", courses[0].Code)
	assert.Len(t, courses[0].Students, 2)
	assert.Equal(t, "ENG4U2", courses[1].Code)
	require.Len(t, courses[1].Students, 1)
	assert.Equal(t, "Bo", courses[1].Students[0].PreferredName)

	assert.Equal(t, courses[0].Evaluations, courses[1].Evaluations)
	courses[1].Evaluations[0].Name = "changed"
	assert.Equal(t, "Term 1", courses[0].Evaluations[0].Name)
	assert.Equal(t, 3, courses[1].LeafCount())
}

func TestReadCoursesSkipsNonCourseSheets(t *testing.T) {
	wb := &spreadsheet.Workbook{Sheets: []*spreadsheet.Sheet{
		buildSheet("Notes", header("Term 1"), header("A"), header("a"), row(meta("X", "", "Y", "Z", ""), 1)),
		courseSheet(row(meta("Ann", "", "Smith", "Annabel", ""), 1)),
	}}

	courses, err := ReadCourses(wb, nil)
	require.NoError(t, err)

	require.Len(t, courses, 1)
	assert.Equal(t, "ENG4U1", courses[0].Code)
}

func TestReadCoursesMergesOverridesIntoExistingSheet(t *testing.T) {
	eng2 := courseSheet(row(meta("Cy", "", "Ng", "Cyrus", ""), 4))
	eng2.Name = "ENG4U2"
	wb := &spreadsheet.Workbook{Sheets: []*spreadsheet.Sheet{
		courseSheet(
			row(meta("Ann", "", "Smith", "Annabel", ""), 3),
			row(meta("Bo", "", "Tran", "Bao", "ENG4U2"), 2),
		),
		eng2,
	}}

	courses, err := ReadCourses(wb, nil)
	require.NoError(t, err)

	require.Len(t, courses, 2)
	assert.Equal(t, "ENG4U1", courses[0].Code)
	require.Len(t, courses[0].Students, 1)

	merged := courses[1]
	assert.Equal(t, "ENG4U2", merged.Code)
	require.Len(t, merged.Students, 2)
	assert.Equal(t, "Bao", merged.Students[0].GivenName)
	assert.Equal(t, 2.0, *merged.Students[0].Grade(0))
	assert.Equal(t, "Cyrus", merged.Students[1].GivenName)
	assert.Equal(t, 4.0, *merged.Students[1].Grade(0))
}

func TestReadCoursesRejectsConflictingHierarchies(t *testing.T) {
	eng2 := buildSheet("ENG4U2",
		header("Term 1"),
		header("Labs"),
		header("Lab 1"),
		row(meta("Cy", "", "Ng", "Cyrus", ""), 4),
	)
	wb := &spreadsheet.Workbook{Sheets: []*spreadsheet.Sheet{
		courseSheet(
			row(meta("Ann", "", "Smith", "Annabel", ""), 3),
			row(meta("Bo", "", "Tran", "Bao", "ENG4U2"), 2),
		),
		eng2,
	}}

	courses, err := ReadCourses(wb, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "ENG4U2")

	require.Len(t, courses, 1)
	assert.Equal(t, "ENG4U1", courses[0].Code)
}

func TestIsCourseSheet(t *testing.T) {
	assert.True(t, IsCourseSheet("ENG4U1"))
	assert.True(t, IsCourseSheet("MHF4U"))
	assert.True(t, IsCourseSheet("SBI3U1 (2)"))
	assert.False(t, IsCourseSheet("ENG5U1"))
	assert.False(t, IsCourseSheet("eng4u1"))
	assert.False(t, IsCourseSheet("Retakes"))
}
