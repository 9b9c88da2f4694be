package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	"github.com/noah-isme/gradesync/pkg/database"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

// ImportRetakes replaces the retake sessions of every course named in
// retakes. Grades map in order onto the leaves of the named section. Rows
// pointing at an evaluation or section the course does not have are skipped.
// A failing course does not stop the others; failures are returned combined
// with the number of sessions written.
func (s *ImportService) ImportRetakes(ctx context.Context, retakes []models.Retake) (int, error) {
	var order []string
	byCourse := make(map[string][]models.Retake)
	for _, r := range retakes {
		if _, ok := byCourse[r.CourseCode]; !ok {
			order = append(order, r.CourseCode)
		}
		byCourse[r.CourseCode] = append(byCourse[r.CourseCode], r)
	}

	total := 0
	var errs error
	for _, code := range order {
		var n int
		err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
			var err error
			n, err = s.importCourseRetakes(ctx, repository.NewStore(tx), code, byCourse[code])
			return err
		})
		if err != nil {
			s.logger.Error("course retakes failed", zap.String("course", code), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("retakes for %s: %w", code, err))
			continue
		}
		total += n
	}
	s.metrics.AddRetakes(total)
	return total, errs
}

func (s *ImportService) importCourseRetakes(ctx context.Context, store *repository.Store, code string, retakes []models.Retake) (int, error) {
	course, err := store.Courses.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrUnknownCourse, fmt.Sprintf("course %s not provisioned", code))
		}
		return 0, fmt.Errorf("find course %s: %w", code, err)
	}

	items, err := store.Evaluations.ListItemsByCourse(ctx, course.ID)
	if err != nil {
		return 0, err
	}
	tree, err := buildItemForest(items)
	if err != nil {
		return 0, err
	}
	evaluations, leafIDs, err := evaluationsFromForest(tree)
	if err != nil {
		return 0, err
	}

	students, err := store.Students.ListByCourse(ctx, course.ID)
	if err != nil {
		return 0, err
	}
	byPreferred := make(map[string]int64, len(students))
	for _, st := range students {
		if st.PreferredName == nil {
			continue
		}
		key := models.NormalizeName(*st.PreferredName)
		if _, dup := byPreferred[key]; dup {
			return 0, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("preferred name %s is shared by several students in %s", *st.PreferredName, code))
		}
		byPreferred[key] = st.ID
	}

	previous, err := store.Evaluations.CountRetakesByCourse(ctx, course.ID)
	if err != nil {
		return 0, err
	}
	if previous > 0 {
		s.logger.Debug("replacing retakes", zap.String("course", code), zap.Int("previous", previous))
	}
	if err := store.Evaluations.DeleteRetakesByCourse(ctx, course.ID); err != nil {
		return 0, err
	}

	inserted := 0
	for _, r := range retakes {
		log := s.logger.With(zap.String("course", code), zap.Int("row", r.Row+1))

		section := findSection(evaluations, r.Evaluation, r.Section)
		if section == nil {
			log.Warn("retake section not found", zap.Int("evaluation", r.Evaluation), zap.String("section", r.Section))
			continue
		}
		studentID, ok := byPreferred[models.NormalizeName(r.PreferredName)]
		if !ok {
			return 0, appErrors.Clone(appErrors.ErrUnknownStudent,
				fmt.Sprintf("student %s not found in %s", r.PreferredName, code))
		}
		if len(r.Grades) > len(section.Components) {
			log.Warn("retake has more grades than section components",
				zap.Int("grades", len(r.Grades)), zap.Int("components", len(section.Components)))
		}

		retake := &models.RetakeRecord{CourseID: course.ID, Excluded: r.Excluded, TakenAt: r.TakenAt}
		if _, err := store.Evaluations.InsertRetake(ctx, retake); err != nil {
			return 0, err
		}
		for i, grade := range r.Grades {
			if i >= len(section.Components) {
				break
			}
			value := grade
			if err := store.Evaluations.InsertResult(ctx, models.EvaluationResult{
				ItemID:    leafIDs[section.Components[i].Index],
				RetakeID:  &retake.ID,
				StudentID: studentID,
				Value:     &value,
			}); err != nil {
				return 0, err
			}
		}
		inserted++
	}
	return inserted, nil
}

// findSection resolves a 1-based evaluation number and a section name.
func findSection(evaluations []models.Evaluation, evaluation int, name string) *models.Section {
	if evaluation < 1 || evaluation > len(evaluations) {
		return nil
	}
	ev := evaluations[evaluation-1]
	for i := range ev.Sections {
		if models.NormalizeName(ev.Sections[i].Name) == models.NormalizeName(name) {
			return &ev.Sections[i]
		}
	}
	return nil
}
