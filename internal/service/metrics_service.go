package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Course import outcomes.
const (
	ImportStatusOK     = "ok"
	ImportStatusFailed = "failed"
)

// MetricsSnapshot is a point-in-time copy of the run counters.
type MetricsSnapshot struct {
	CoursesImported     uint64
	CoursesFailed       uint64
	ResultsWritten      uint64
	RetakesWritten      uint64
	StudentsProvisioned uint64
}

// MetricsService records run statistics in a private Prometheus registry so
// they can be written out as a node-exporter textfile after the run.
type MetricsService struct {
	registry       *prometheus.Registry
	courseImports  *prometheus.CounterVec
	importDuration prometheus.Histogram
	results        prometheus.Counter
	retakes        prometheus.Counter
	provisioned    prometheus.Counter
	lastRun        prometheus.Gauge

	coursesOK   uint64
	coursesFail uint64
	resultCount uint64
	retakeCount uint64
	provCount   uint64
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	courseImports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradesync_course_imports_total",
		Help: "Course imports by outcome",
	}, []string{"status"})

	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gradesync_course_import_duration_seconds",
		Help:    "Duration of one course import transaction",
		Buckets: prometheus.DefBuckets,
	})

	results := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gradesync_results_written_total",
		Help: "Evaluation results inserted",
	})

	retakes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gradesync_retakes_written_total",
		Help: "Retake sessions inserted",
	})

	provisioned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gradesync_students_provisioned_total",
		Help: "Students inserted or refreshed from the portal",
	})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gradesync_last_run_timestamp_seconds",
		Help: "Unix time of the last completed run",
	})

	registry.MustRegister(courseImports, importDuration, results, retakes, provisioned, lastRun)

	return &MetricsService{
		registry:       registry,
		courseImports:  courseImports,
		importDuration: importDuration,
		results:        results,
		retakes:        retakes,
		provisioned:    provisioned,
		lastRun:        lastRun,
	}
}

// ObserveCourseImport records one course import.
func (m *MetricsService) ObserveCourseImport(status string, duration time.Duration, results int) {
	if m == nil {
		return
	}
	m.courseImports.WithLabelValues(status).Inc()
	m.importDuration.Observe(duration.Seconds())
	if status == ImportStatusOK {
		atomic.AddUint64(&m.coursesOK, 1)
	} else {
		atomic.AddUint64(&m.coursesFail, 1)
	}
	if results > 0 {
		m.results.Add(float64(results))
		atomic.AddUint64(&m.resultCount, uint64(results))
	}
}

// AddRetakes counts inserted retake sessions.
func (m *MetricsService) AddRetakes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.retakes.Add(float64(n))
	atomic.AddUint64(&m.retakeCount, uint64(n))
}

// AddProvisioned counts provisioned students.
func (m *MetricsService) AddProvisioned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.provisioned.Add(float64(n))
	atomic.AddUint64(&m.provCount, uint64(n))
}

// MarkRun stamps the completion time of a run.
func (m *MetricsService) MarkRun(at time.Time) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(at.Unix()))
}

// Snapshot returns the counters accumulated so far.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		CoursesImported:     atomic.LoadUint64(&m.coursesOK),
		CoursesFailed:       atomic.LoadUint64(&m.coursesFail),
		ResultsWritten:      atomic.LoadUint64(&m.resultCount),
		RetakesWritten:      atomic.LoadUint64(&m.retakeCount),
		StudentsProvisioned: atomic.LoadUint64(&m.provCount),
	}
}

// WriteTextfile dumps the registry in the Prometheus text format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
