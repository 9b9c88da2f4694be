package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/gradebook"
	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
	"github.com/noah-isme/gradesync/pkg/database"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
	"github.com/noah-isme/gradesync/pkg/logger"
)

// ImportConfig tunes the grade importer.
type ImportConfig struct {
	DefaultScale string
	RetakeSheet  string
	Markers      []gradebook.LabelMarker
}

// WorkbookReport collects the outcome of a workbook import.
type WorkbookReport struct {
	RunID   string
	Courses []models.ImportSummary
	Retakes int
}

// ImportService merges decoded gradebooks into the store, one transaction per course.
type ImportService struct {
	db      *sqlx.DB
	cfg     ImportConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(db *sqlx.DB, cfg ImportConfig, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultScale == "" {
		cfg.DefaultScale = models.ScaleLevel
	}
	if cfg.Markers == nil {
		cfg.Markers = gradebook.DefaultLabelMarkers
	}
	return &ImportService{db: db, cfg: cfg, metrics: metrics, logger: logger}
}

// ImportWorkbook imports every course sheet, then the retake sheet. A failing
// course does not stop the others; all failures are returned combined.
func (s *ImportService) ImportWorkbook(ctx context.Context, wb *spreadsheet.Workbook) (*WorkbookReport, error) {
	log, runID := logger.ForRun(s.logger, "import")
	report := &WorkbookReport{RunID: runID}

	courses, errs := gradebook.ReadCourses(wb, s.cfg.Markers)
	if errs != nil {
		log.Error("conflicting course sheets", zap.Error(errs))
	}
	log.Info("decoded workbook", zap.Int("courses", len(courses)))

	for _, course := range courses {
		summary, err := s.ImportCourse(ctx, course)
		if err != nil {
			log.Error("course import failed", zap.String("course", course.Code), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("course %s: %w", course.Code, err))
			continue
		}
		log.Info("course imported",
			zap.String("course", summary.CourseCode),
			zap.Int("students", summary.Students),
			zap.Int("items", summary.Items),
			zap.Int("results", summary.Results),
		)
		report.Courses = append(report.Courses, *summary)
	}

	if sheet := wb.Sheet(s.cfg.RetakeSheet); sheet != nil {
		n, err := s.ImportRetakes(ctx, gradebook.ReadRetakes(sheet))
		report.Retakes = n
		if err != nil {
			log.Error("retake import failed", zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	s.metrics.MarkRun(time.Now())
	return report, errs
}

// ImportCourse replaces the evaluation hierarchy and results of one course
// atomically.
func (s *ImportService) ImportCourse(ctx context.Context, course models.Course) (*models.ImportSummary, error) {
	start := time.Now()
	var summary *models.ImportSummary
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		summary, err = s.importCourse(ctx, repository.NewStore(tx), course)
		return err
	})
	if err != nil {
		s.metrics.ObserveCourseImport(ImportStatusFailed, time.Since(start), 0)
		return nil, err
	}
	s.metrics.ObserveCourseImport(ImportStatusOK, time.Since(start), summary.Results)
	return summary, nil
}

func (s *ImportService) importCourse(ctx context.Context, store *repository.Store, course models.Course) (*models.ImportSummary, error) {
	record, err := store.Courses.FindByCode(ctx, course.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownCourse, fmt.Sprintf("course %s not provisioned", course.Code))
		}
		return nil, fmt.Errorf("find course %s: %w", course.Code, err)
	}

	scale, err := store.Scales.FindByName(ctx, s.cfg.DefaultScale)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("scale %s does not exist", s.cfg.DefaultScale))
		}
		return nil, fmt.Errorf("find scale: %w", err)
	}

	studentIDs, err := s.syncStudents(ctx, store, record, course.Students)
	if err != nil {
		return nil, err
	}

	if err := store.Evaluations.DeleteByCourse(ctx, record.ID); err != nil {
		return nil, err
	}

	leafIDs, items, err := insertHierarchy(ctx, store, record.ID, scale.ID, course.Evaluations)
	if err != nil {
		return nil, err
	}

	results := 0
	for leaf, itemID := range leafIDs {
		for i, st := range course.Students {
			value := st.Grade(leaf)
			if value == nil {
				continue
			}
			if err := store.Evaluations.InsertResult(ctx, models.EvaluationResult{
				ItemID:    itemID,
				StudentID: studentIDs[i],
				Value:     value,
			}); err != nil {
				return nil, err
			}
			results++
		}
	}

	return &models.ImportSummary{
		CourseCode: course.Code,
		Students:   len(course.Students),
		Items:      items,
		Results:    results,
	}, nil
}

// syncStudents resolves every decoded student by natural key, refreshes its
// preferred name and attaches its labels. Ids are returned in input order.
func (s *ImportService) syncStudents(ctx context.Context, store *repository.Store, course *models.CourseRecord, students []models.Student) ([]int64, error) {
	stored, err := store.Students.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]int64, len(stored))
	for _, st := range stored {
		key := models.StudentKey(st.GivenName, st.FamilyName, course.Code)
		if _, dup := byKey[key]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("students named %s %s are ambiguous in %s", st.GivenName, st.FamilyName, course.Code))
		}
		byKey[key] = st.ID
	}

	labelIDs := make(map[string]int64)
	ids := make([]int64, len(students))
	for i, st := range students {
		id, ok := byKey[models.StudentKey(st.GivenName, st.FamilyName, course.Code)]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrUnknownStudent,
				fmt.Sprintf("student %s %s not provisioned in %s", st.GivenName, st.FamilyName, course.Code))
		}
		ids[i] = id

		if err := store.Students.UpdatePreferredName(ctx, id, st.PreferredName); err != nil {
			return nil, err
		}
		for _, label := range st.Labels {
			labelID, ok := labelIDs[label]
			if !ok {
				labelID, err = store.Labels.Ensure(ctx, label)
				if err != nil {
					return nil, err
				}
				labelIDs[label] = labelID
			}
			if err := store.Labels.Attach(ctx, id, labelID); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

// insertHierarchy writes evaluations, sections and components in decode
// order. The returned ids are indexed by leaf index.
func insertHierarchy(ctx context.Context, store *repository.Store, courseID, scaleID int64, evaluations []models.Evaluation) (map[int]int64, int, error) {
	leafIDs := make(map[int]int64)
	items := 0
	for ei, ev := range evaluations {
		evaluation := &models.EvaluationItemRecord{Name: ev.Name, CourseID: courseID, SiblingIndex: ei}
		if _, err := store.Evaluations.InsertItem(ctx, evaluation); err != nil {
			return nil, 0, err
		}
		items++
		for si, sec := range ev.Sections {
			section := &models.EvaluationItemRecord{Name: sec.Name, CourseID: courseID, ParentID: &evaluation.ID, SiblingIndex: si}
			if _, err := store.Evaluations.InsertItem(ctx, section); err != nil {
				return nil, 0, err
			}
			items++
			for ci, comp := range sec.Components {
				scale := scaleID
				if comp.ScaleID != nil {
					scale = *comp.ScaleID
				}
				leaf := &models.EvaluationItemRecord{
					Name:         comp.Name,
					CourseID:     courseID,
					ParentID:     &section.ID,
					SiblingIndex: ci,
					ScaleID:      &scale,
					Formula:      comp.Formula,
				}
				if _, err := store.Evaluations.InsertItem(ctx, leaf); err != nil {
					return nil, 0, err
				}
				items++
				leafIDs[comp.Index] = leaf.ID
			}
		}
	}
	return leafIDs, items, nil
}
