package models

// Course is a logical course decoded from a gradebook sheet.
type Course struct {
	Code        string
	Evaluations []Evaluation
	Students    []Student
}

// LeafCount returns the number of leaf components in the course hierarchy.
func (c Course) LeafCount() int {
	n := 0
	for _, e := range c.Evaluations {
		for _, s := range e.Sections {
			n += len(s.Components)
		}
	}
	return n
}

// CourseRecord mirrors a row of the course table.
type CourseRecord struct {
	ID   int64   `db:"id" json:"id"`
	Code string  `db:"code" json:"code"`
	Name *string `db:"name" json:"name,omitempty"`
}

// ImportSummary counts the rows written for one course.
type ImportSummary struct {
	CourseCode string
	Students   int
	Items      int
	Results    int
}
