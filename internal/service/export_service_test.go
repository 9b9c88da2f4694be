package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/pkg/export"
)

type contactStub struct {
	students []models.StudentExportRow
	contacts []models.ContactExportRow
	err      error
}

func (c contactStub) ListStudents(ctx context.Context) ([]models.StudentExportRow, error) {
	return c.students, c.err
}

func (c contactStub) ListContacts(ctx context.Context) ([]models.ContactExportRow, error) {
	return c.contacts, c.err
}

type memoryStorage struct {
	files  map[string][]byte
	pruned []string
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return "/exports/" + filename, nil
}

func (m *memoryStorage) Prune(prefix string, keep int) ([]string, error) {
	m.pruned = append(m.pruned, prefix)
	return nil, nil
}

type sheetCapture struct{ sheets []export.Sheet }

func (s *sheetCapture) Render(sheets []export.Sheet) ([]byte, error) {
	s.sheets = sheets
	return []byte("xlsx"), nil
}

func exportFixture() contactStub {
	return contactStub{
		students: []models.StudentExportRow{
			{CourseCode: "ENG4U1-01", GivenName: "Annabel", FamilyName: "Smith"},
			{CourseCode: "ENG4U1-01", GivenName: "Bao", FamilyName: "Tran"},
		},
		contacts: []models.ContactExportRow{
			{CourseCode: "ENG4U1-01", GivenName: "Annabel", FamilyName: "Smith", Contact: "Marie Smith",
				Email: "marie@example.org", CellPhone: "613-555-0100", HomePhone: "613-555-0199"},
			{CourseCode: "ENG4U1-01", GivenName: "Bao", FamilyName: "Tran", Contact: "Linh Tran"},
		},
	}
}

func TestExportServiceWritesWorkbookAndCSV(t *testing.T) {
	files := &memoryStorage{}
	sheets := &sheetCapture{}
	svc := NewExportService(exportFixture(), files, ExportConfig{CSV: true, Keep: 5}, nil, sheets, nil)
	svc.now = func() time.Time { return time.Date(2024, 9, 3, 8, 15, 0, 0, time.UTC) }

	result, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/exports/students_2024-09-03_08-15-00.xlsx", result.Workbook)
	assert.Equal(t, "/exports/contacts.csv", result.CSV)
	assert.Equal(t, 2, result.Students)
	assert.Equal(t, 2, result.Contacts)
	assert.Equal(t, []string{StudentsExportPrefix}, files.pruned)

	require.Len(t, sheets.sheets, 4)
	names := []string{sheets.sheets[0].Name, sheets.sheets[1].Name, sheets.sheets[2].Name, sheets.sheets[3].Name}
	assert.Equal(t, []string{"Students", "Contacts", "Emails", "Phones"}, names)
	assert.Len(t, sheets.sheets[0].Data.Rows, 2)
	assert.Len(t, sheets.sheets[1].Data.Rows, 2)
	assert.Len(t, sheets.sheets[2].Data.Rows, 1)
	require.Len(t, sheets.sheets[3].Data.Rows, 2)
	assert.Equal(t, models.ContactCellPhone, sheets.sheets[3].Data.Rows[0]["Type"])

	csv := string(files.files[ContactsCSVName])
	assert.Equal(t, "\xEF\xBB\xBFCourse;Student;Parent;Email\nENG4U1-01;Annabel Smith;Marie Smith;marie@example.org\n", csv)
}

func TestExportServiceSkipsCSVWhenDisabled(t *testing.T) {
	files := &memoryStorage{}
	svc := NewExportService(exportFixture(), files, ExportConfig{}, nil, &sheetCapture{}, nil)

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.CSV)
	assert.Len(t, files.files, 1)
	assert.Empty(t, files.pruned)
}

func TestExportServicePropagatesReadError(t *testing.T) {
	boom := errors.New("db gone")
	svc := NewExportService(contactStub{err: boom}, &memoryStorage{}, ExportConfig{}, nil, nil, nil)
	_, err := svc.Export(context.Background())
	assert.ErrorIs(t, err, boom)
}
