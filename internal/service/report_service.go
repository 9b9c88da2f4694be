package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
	"github.com/noah-isme/gradesync/pkg/export"
	"github.com/noah-isme/gradesync/pkg/storage"
)

// ReportPrefix starts every grade report file name.
const ReportPrefix = "report"

type reportRenderer interface {
	RenderTables(title string, tables []export.Table) ([]byte, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
}

// ReportService rebuilds stored courses and renders them as PDF grade sheets.
type ReportService struct {
	db      *sqlx.DB
	pdf     reportRenderer
	storage reportStorage
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(db *sqlx.DB, storage reportStorage, pdf reportRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{db: db, pdf: pdf, storage: storage, logger: logger, now: time.Now}
}

// LoadCourse reads a course back from the store: its hierarchy in sibling
// order and every student with grades aligned to the leaf order. Retake
// results are not included.
func (s *ReportService) LoadCourse(ctx context.Context, code string) (*models.Course, error) {
	store := repository.NewStore(s.db)

	record, err := store.Courses.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownCourse, fmt.Sprintf("course %s not provisioned", code))
		}
		return nil, fmt.Errorf("find course %s: %w", code, err)
	}

	items, err := store.Evaluations.ListItemsByCourse(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	tree, err := buildItemForest(items)
	if err != nil {
		return nil, err
	}
	evaluations, leafIDs, err := evaluationsFromForest(tree)
	if err != nil {
		return nil, err
	}
	leafIndex := make(map[int64]int, len(leafIDs))
	for i, id := range leafIDs {
		leafIndex[id] = i
	}

	students, err := store.Students.ListByCourse(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	labels, err := store.Labels.ListByCourse(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	labelsByStudent := make(map[int64][]string)
	for _, l := range labels {
		labelsByStudent[l.StudentID] = append(labelsByStudent[l.StudentID], l.Name)
	}
	results, err := store.Evaluations.ListResultsByCourse(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	position := make(map[int64]int, len(students))
	course := &models.Course{Code: record.Code, Evaluations: evaluations}
	for i, st := range students {
		position[st.ID] = i
		preferred := ""
		if st.PreferredName != nil {
			preferred = *st.PreferredName
		}
		course.Students = append(course.Students, models.Student{
			Row:           -1,
			GivenName:     st.GivenName,
			FamilyName:    st.FamilyName,
			PreferredName: preferred,
			CourseCode:    record.Code,
			Labels:        models.LabelSet(labelsByStudent[st.ID]...),
			Grades:        make([]*float64, len(leafIDs)),
		})
	}
	for _, r := range results {
		if r.RetakeID != nil || r.Value == nil {
			continue
		}
		i, ok := position[r.StudentID]
		leaf, known := leafIndex[r.ItemID]
		if !ok || !known {
			continue
		}
		v := *r.Value
		course.Students[i].Grades[leaf] = &v
	}
	return course, nil
}

// Render writes the grade report of one course and returns its path.
func (s *ReportService) Render(ctx context.Context, code string) (string, error) {
	course, err := s.LoadCourse(ctx, code)
	if err != nil {
		return "", err
	}
	scales, err := repository.NewScaleRepository(s.db).List(ctx)
	if err != nil {
		return "", err
	}
	decimals := make(map[int64]int, len(scales))
	for _, sc := range scales {
		decimals[sc.ID] = sc.Precision
	}

	tables := reportTables(course, decimals)
	if len(tables) == 0 {
		tables = []export.Table{{Caption: "No evaluations", Data: export.Dataset{Headers: []string{"Student"}}}}
	}
	data, err := s.pdf.RenderTables(course.Code, tables)
	if err != nil {
		return "", fmt.Errorf("render report %s: %w", code, err)
	}
	name := storage.TimestampedName(ReportPrefix+"_"+course.Code, ".pdf", s.now())
	path, err := s.storage.Save(name, data)
	if err != nil {
		return "", err
	}
	s.logger.Info("grade report written", zap.String("course", course.Code), zap.String("path", path))
	return path, nil
}

// RenderAll writes one report per stored course.
func (s *ReportService) RenderAll(ctx context.Context) ([]string, error) {
	courses, err := repository.NewCourseRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, c := range courses {
		path, err := s.Render(ctx, c.Code)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func reportTables(course *models.Course, decimals map[int64]int) []export.Table {
	var tables []export.Table
	for _, ev := range course.Evaluations {
		type column struct {
			header string
			leaf   int
			places int
		}
		var columns []column
		seen := make(map[string]int)
		for _, sec := range ev.Sections {
			for _, comp := range sec.Components {
				header := sec.Name + " / " + comp.Name
				seen[header]++
				if n := seen[header]; n > 1 {
					header += " #" + strconv.Itoa(n)
				}
				places := 0
				if comp.ScaleID != nil {
					places = decimals[*comp.ScaleID]
				}
				columns = append(columns, column{header: header, leaf: comp.Index, places: places})
			}
		}

		data := export.Dataset{Headers: []string{"Student"}}
		for _, c := range columns {
			data.Headers = append(data.Headers, c.header)
		}
		for _, st := range course.Students {
			row := map[string]string{"Student": reportName(st)}
			for _, c := range columns {
				if v := st.Grade(c.leaf); v != nil {
					row[c.header] = strconv.FormatFloat(*v, 'f', c.places, 64)
				}
			}
			data.Rows = append(data.Rows, row)
		}
		tables = append(tables, export.Table{Caption: ev.Name, Data: data})
	}
	return tables
}

func reportName(st models.Student) string {
	name := st.FamilyName + ", " + st.GivenName
	if st.PreferredName != "" && st.PreferredName != st.GivenName {
		name += " (" + st.PreferredName + ")"
	}
	if len(st.Labels) > 0 {
		name += " [" + strings.Join(st.Labels, ", ") + "]"
	}
	return name
}
