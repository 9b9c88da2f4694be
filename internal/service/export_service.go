package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/pkg/export"
	"github.com/noah-isme/gradesync/pkg/storage"
)

// Export file names.
const (
	StudentsExportPrefix = "students"
	ContactsCSVName      = "contacts.csv"
)

type contactReader interface {
	ListStudents(ctx context.Context) ([]models.StudentExportRow, error)
	ListContacts(ctx context.Context) ([]models.ContactExportRow, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Prune(prefix string, keep int) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(sheets []export.Sheet) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	CSV  bool
	Keep int
}

// ExportResult lists the files written by one export.
type ExportResult struct {
	Workbook string
	CSV      string
	Students int
	Contacts int
}

// ExportService writes the student and contact workbook.
type ExportService struct {
	contacts contactReader
	storage  fileStorage
	xlsx     xlsxRenderer
	csv      csvRenderer
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(contacts contactReader, storage fileStorage, cfg ExportConfig, logger *zap.Logger, xlsx xlsxRenderer, csv csvRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if csv == nil {
		csv = export.NewCSVExporter(export.WithDelimiter(';'), export.WithBOM())
	}
	return &ExportService{
		contacts: contacts,
		storage:  storage,
		xlsx:     xlsx,
		csv:      csv,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Export renders the workbook and, when enabled, the contacts CSV.
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	students, err := s.contacts.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.xlsx.Render(contactSheets(students, contacts))
	if err != nil {
		return nil, fmt.Errorf("render contacts workbook: %w", err)
	}
	name := storage.TimestampedName(StudentsExportPrefix, ".xlsx", s.now())
	path, err := s.storage.Save(name, data)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{Workbook: path, Students: len(students), Contacts: len(contacts)}

	if s.cfg.CSV {
		csvData, err := s.csv.Render(emailDataset(contacts))
		if err != nil {
			return nil, fmt.Errorf("render contacts csv: %w", err)
		}
		if result.CSV, err = s.storage.Save(ContactsCSVName, csvData); err != nil {
			return nil, err
		}
	}

	if s.cfg.Keep > 0 {
		removed, err := s.storage.Prune(StudentsExportPrefix, s.cfg.Keep)
		if err != nil {
			s.logger.Warn("prune old exports", zap.Error(err))
		} else if len(removed) > 0 {
			s.logger.Debug("pruned old exports", zap.Strings("files", removed))
		}
	}

	s.logger.Info("contacts exported",
		zap.String("workbook", result.Workbook),
		zap.Int("students", result.Students),
		zap.Int("contacts", result.Contacts),
	)
	return result, nil
}

func studentName(given, family string) string {
	return given + " " + family
}

func contactSheets(students []models.StudentExportRow, contacts []models.ContactExportRow) []export.Sheet {
	studentData := export.Dataset{Headers: []string{"Course", "Given name", "Family name"}}
	for _, st := range students {
		studentData.Rows = append(studentData.Rows, map[string]string{
			"Course":      st.CourseCode,
			"Given name":  st.GivenName,
			"Family name": st.FamilyName,
		})
	}

	contactData := export.Dataset{Headers: []string{"Course", "Student", "Contact", "Relation", "Priority", "Email", "Home phone", "Work phone", "Cell phone"}}
	emailData := export.Dataset{Headers: []string{"Course", "Student", "Contact", "Email"}}
	phoneData := export.Dataset{Headers: []string{"Course", "Student", "Contact", "Type", "Phone"}}
	for _, c := range contacts {
		student := studentName(c.GivenName, c.FamilyName)
		contactData.Rows = append(contactData.Rows, map[string]string{
			"Course":     c.CourseCode,
			"Student":    student,
			"Contact":    c.Contact,
			"Relation":   c.Relation,
			"Priority":   c.Priority,
			"Email":      c.Email,
			"Home phone": c.HomePhone,
			"Work phone": c.WorkPhone,
			"Cell phone": c.CellPhone,
		})
		if c.Email != "" {
			emailData.Rows = append(emailData.Rows, map[string]string{
				"Course": c.CourseCode, "Student": student, "Contact": c.Contact, "Email": c.Email,
			})
		}
		for _, phone := range []struct{ kind, value string }{
			{models.ContactCellPhone, c.CellPhone},
			{models.ContactHomePhone, c.HomePhone},
			{models.ContactWorkPhone, c.WorkPhone},
		} {
			if phone.value == "" {
				continue
			}
			phoneData.Rows = append(phoneData.Rows, map[string]string{
				"Course": c.CourseCode, "Student": student, "Contact": c.Contact, "Type": phone.kind, "Phone": phone.value,
			})
		}
	}

	return []export.Sheet{
		{Name: "Students", Data: studentData},
		{Name: "Contacts", Data: contactData},
		{Name: "Emails", Data: emailData},
		{Name: "Phones", Data: phoneData},
	}
}

func emailDataset(contacts []models.ContactExportRow) export.Dataset {
	data := export.Dataset{Headers: []string{"Course", "Student", "Parent", "Email"}}
	for _, c := range contacts {
		if c.Email == "" {
			continue
		}
		data.Rows = append(data.Rows, map[string]string{
			"Course":  c.CourseCode,
			"Student": studentName(c.GivenName, c.FamilyName),
			"Parent":  c.Contact,
			"Email":   c.Email,
		})
	}
	return data
}
