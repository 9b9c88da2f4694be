package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gradesync/internal/models"
)

// ContactRepository manages student contacts and their coordinates.
type ContactRepository struct {
	db sqlx.ExtContext
}

// NewContactRepository constructs a ContactRepository.
func NewContactRepository(db sqlx.ExtContext) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert stores a contact for a student, refreshing the mutable fields of an
// existing contact with the same name, and returns the contact id.
func (r *ContactRepository) Upsert(ctx context.Context, studentID int64, contact models.Contact) (int64, error) {
	query := r.db.Rebind(`INSERT INTO student_contact (student_id, full_name, relation, correspondence, automatic, priority)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (student_id, full_name)
	DO UPDATE SET relation = excluded.relation, correspondence = excluded.correspondence, priority = excluded.priority
	RETURNING id`)
	var id int64
	if err := sqlx.GetContext(ctx, r.db, &id, query,
		studentID, contact.FullName, contact.Relation, contact.Correspondence, true, contact.Priority); err != nil {
		return 0, fmt.Errorf("upsert contact %s: %w", contact.FullName, err)
	}
	return id, nil
}

// AddItem records one coordinate of the given type for a contact. Known
// coordinates are ignored.
func (r *ContactRepository) AddItem(ctx context.Context, contactID int64, itemType, value string) error {
	query := r.db.Rebind(`INSERT INTO contact_item (contact_id, type_id, value, automatic)
	SELECT ?, id, ?, ? FROM contact_type WHERE type = ?
	ON CONFLICT (contact_id, value, automatic) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, contactID, value, true, itemType); err != nil {
		return fmt.Errorf("add contact item: %w", err)
	}
	return nil
}

// ListStudents returns every student with its course for export.
func (r *ContactRepository) ListStudents(ctx context.Context) ([]models.StudentExportRow, error) {
	const query = `SELECT c.code AS course_code, s.given_name, s.family_name
	FROM student s
	JOIN course c ON c.id = s.course_id
	ORDER BY c.code, s.family_name, s.given_name`
	var rows []models.StudentExportRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list export students: %w", err)
	}
	return rows, nil
}

// ListContacts returns one row per contact with its coordinates flattened by type.
func (r *ContactRepository) ListContacts(ctx context.Context) ([]models.ContactExportRow, error) {
	query := r.db.Rebind(`SELECT c.code AS course_code, s.given_name, s.family_name,
	       sc.full_name AS contact,
	       COALESCE(sc.relation, '') AS relation,
	       COALESCE(CAST(sc.priority AS TEXT), '') AS priority,
	       COALESCE((SELECT MIN(ci.value) FROM contact_item ci JOIN contact_type ct ON ct.id = ci.type_id
	                 WHERE ci.contact_id = sc.id AND ct.type = ?), '') AS email,
	       COALESCE((SELECT MIN(ci.value) FROM contact_item ci JOIN contact_type ct ON ct.id = ci.type_id
	                 WHERE ci.contact_id = sc.id AND ct.type = ?), '') AS home_phone,
	       COALESCE((SELECT MIN(ci.value) FROM contact_item ci JOIN contact_type ct ON ct.id = ci.type_id
	                 WHERE ci.contact_id = sc.id AND ct.type = ?), '') AS work_phone,
	       COALESCE((SELECT MIN(ci.value) FROM contact_item ci JOIN contact_type ct ON ct.id = ci.type_id
	                 WHERE ci.contact_id = sc.id AND ct.type = ?), '') AS cell_phone
	FROM student_contact sc
	JOIN student s ON s.id = sc.student_id
	JOIN course c ON c.id = s.course_id
	ORDER BY c.code, s.family_name, s.given_name, sc.priority IS NULL, sc.priority, sc.full_name`)
	var rows []models.ContactExportRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query,
		models.ContactEmail, models.ContactHomePhone, models.ContactWorkPhone, models.ContactCellPhone); err != nil {
		return nil, fmt.Errorf("list export contacts: %w", err)
	}
	return rows, nil
}
