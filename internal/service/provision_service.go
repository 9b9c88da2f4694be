package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	"github.com/noah-isme/gradesync/pkg/database"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
	"github.com/noah-isme/gradesync/pkg/logger"
)

// RosterSource lists the courses and students known to the portal.
type RosterSource interface {
	Roster(ctx context.Context) ([]models.RosterCourse, error)
}

// ProvisionSummary counts rows written by a provisioning run.
type ProvisionSummary struct {
	RunID    string
	Courses  int
	Students int
	Contacts int
}

// ProvisionService creates the courses, students and contacts the grade
// importer expects to find.
type ProvisionService struct {
	db        *sqlx.DB
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewProvisionService constructs a ProvisionService.
func NewProvisionService(db *sqlx.DB, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ProvisionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisionService{db: db, validator: validate, metrics: metrics, logger: logger}
}

// Sync pulls the roster from source and provisions it.
func (s *ProvisionService) Sync(ctx context.Context, source RosterSource) (*ProvisionSummary, error) {
	courses, err := source.Roster(ctx)
	if err != nil {
		return nil, err
	}
	return s.Provision(ctx, courses)
}

// Provision writes every roster course in its own transaction. Existing rows
// are kept and refreshed.
func (s *ProvisionService) Provision(ctx context.Context, courses []models.RosterCourse) (*ProvisionSummary, error) {
	log, runID := logger.ForRun(s.logger, "provision")
	summary := &ProvisionSummary{RunID: runID}

	for _, course := range courses {
		if err := s.validator.Struct(course); err != nil {
			return summary, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.ExitCode,
				fmt.Sprintf("invalid roster for course %q", course.Code))
		}
	}

	for _, course := range courses {
		var students, contacts int
		err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
			var err error
			students, contacts, err = provisionCourse(ctx, repository.NewStore(tx), course)
			return err
		})
		if err != nil {
			return summary, fmt.Errorf("provision %s: %w", course.Code, err)
		}
		log.Info("course provisioned",
			zap.String("course", course.Code),
			zap.Int("students", students),
			zap.Int("contacts", contacts),
		)
		summary.Courses++
		summary.Students += students
		summary.Contacts += contacts
		s.metrics.AddProvisioned(students)
	}
	return summary, nil
}

func provisionCourse(ctx context.Context, store *repository.Store, course models.RosterCourse) (int, int, error) {
	courseID, err := store.Courses.Ensure(ctx, course.Code)
	if err != nil {
		return 0, 0, err
	}
	contacts := 0
	for _, st := range course.Students {
		studentID, err := store.Students.Upsert(ctx, &models.StudentRecord{
			GivenName:  st.GivenName,
			FamilyName: st.FamilyName,
			CourseID:   courseID,
			BirthDate:  st.BirthDate,
		})
		if err != nil {
			return 0, 0, err
		}
		for _, c := range st.Contacts {
			contactID, err := store.Contacts.Upsert(ctx, studentID, c)
			if err != nil {
				return 0, 0, err
			}
			for _, item := range contactItems(c) {
				if err := store.Contacts.AddItem(ctx, contactID, item.kind, item.value); err != nil {
					return 0, 0, err
				}
			}
			contacts++
		}
	}
	return len(course.Students), contacts, nil
}

type contactItem struct {
	kind  string
	value string
}

func contactItems(c models.Contact) []contactItem {
	var items []contactItem
	add := func(kind string, value *string) {
		if value != nil && *value != "" {
			items = append(items, contactItem{kind: kind, value: *value})
		}
	}
	add(models.ContactEmail, c.Email)
	add(models.ContactCellPhone, c.CellPhone)
	add(models.ContactHomePhone, c.HomePhone)
	add(models.ContactWorkPhone, c.WorkPhone)
	return items
}
