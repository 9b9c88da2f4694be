package models

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Student is one learner row decoded from a gradebook sheet.
type Student struct {
	Row           int
	GivenName     string
	FamilyName    string
	PreferredName string
	CourseCode    string
	Labels        []string
	Grades        []*float64
}

// Grade returns the grade recorded for the leaf component at index.
func (s Student) Grade(index int) *float64 {
	if index < 0 || index >= len(s.Grades) {
		return nil
	}
	return s.Grades[index]
}

// HasLabel reports whether label is part of the student's label set.
func (s Student) HasLabel(label string) bool {
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// StudentRecord mirrors a row of the student table.
type StudentRecord struct {
	ID            int64      `db:"id" json:"id"`
	PreferredName *string    `db:"preferred_name" json:"preferred_name,omitempty"`
	GivenName     string     `db:"given_name" json:"given_name"`
	FamilyName    string     `db:"family_name" json:"family_name"`
	CourseID      int64      `db:"course_id" json:"course_id"`
	BirthDate     *time.Time `db:"birth_date" json:"birth_date,omitempty"`
}

// NormalizeName folds case and collapses whitespace so names from different
// sources compare equal.
func NormalizeName(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// StudentKey builds the identity used to match students across sources.
func StudentKey(givenName, familyName, course string) string {
	return NormalizeName(givenName) + "\x00" + NormalizeName(familyName) + "\x00" + NormalizeName(course)
}

// LabelSet returns labels sorted and without duplicates.
func LabelSet(labels ...string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
