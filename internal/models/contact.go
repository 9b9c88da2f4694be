package models

import "time"

// Contact item types seeded by the schema bootstrap.
const (
	ContactEmail     = "Email"
	ContactCellPhone = "Cell phone"
	ContactHomePhone = "Home phone"
	ContactWorkPhone = "Work phone"
)

// Labels derived from gradebook markers.
const (
	LabelVirtual = "Virtual"
	LabelAP      = "AP"
)

// Contact is a guardian or contact person attached to a student.
type Contact struct {
	FullName       string  `validate:"required"`
	Relation       *string
	HomePhone      *string
	WorkPhone      *string
	CellPhone      *string
	Email          *string `validate:"omitempty,email"`
	Correspondence bool
	Priority       *int
}

// Reachable reports whether the contact has at least one coordinate.
func (c Contact) Reachable() bool {
	return c.HomePhone != nil || c.WorkPhone != nil || c.CellPhone != nil || c.Email != nil
}

// RosterStudent is a student as listed by the portal.
type RosterStudent struct {
	PortalID   int        `validate:"required"`
	GivenName  string     `validate:"required"`
	FamilyName string     `validate:"required"`
	BirthDate  *time.Time
	Contacts   []Contact `validate:"dive"`
}

// RosterCourse is a course code with its portal students.
type RosterCourse struct {
	GroupID  int
	Code     string `validate:"required"`
	Students []RosterStudent `validate:"dive"`
}

// StudentExportRow is one line of the students sheet.
type StudentExportRow struct {
	CourseCode string `db:"course_code"`
	GivenName  string `db:"given_name"`
	FamilyName string `db:"family_name"`
}

// ContactExportRow is one line of the contact sheets.
type ContactExportRow struct {
	CourseCode string `db:"course_code"`
	GivenName  string `db:"given_name"`
	FamilyName string `db:"family_name"`
	Contact    string `db:"contact"`
	Relation   string `db:"relation"`
	Priority   string `db:"priority"`
	Email      string `db:"email"`
	HomePhone  string `db:"home_phone"`
	WorkPhone  string `db:"work_phone"`
	CellPhone  string `db:"cell_phone"`
}
