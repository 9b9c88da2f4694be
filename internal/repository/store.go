package repository

import "github.com/jmoiron/sqlx"

// Store groups the repositories bound to one handle, either the database or
// an open transaction.
type Store struct {
	Courses     *CourseRepository
	Students    *StudentRepository
	Labels      *LabelRepository
	Scales      *ScaleRepository
	Evaluations *EvaluationRepository
	Contacts    *ContactRepository
}

// NewStore binds every repository to q.
func NewStore(q sqlx.ExtContext) *Store {
	return &Store{
		Courses:     NewCourseRepository(q),
		Students:    NewStudentRepository(q),
		Labels:      NewLabelRepository(q),
		Scales:      NewScaleRepository(q),
		Evaluations: NewEvaluationRepository(q),
		Contacts:    NewContactRepository(q),
	}
}
