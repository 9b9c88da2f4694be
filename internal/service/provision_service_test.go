package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradesync/internal/models"
	"github.com/noah-isme/gradesync/internal/repository"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

type rosterStub struct {
	courses []models.RosterCourse
	err     error
}

func (r rosterStub) Roster(ctx context.Context) ([]models.RosterCourse, error) {
	return r.courses, r.err
}

func strPtr(s string) *string { return &s }

func sampleRoster() []models.RosterCourse {
	born := time.Date(2007, 5, 1, 0, 0, 0, 0, time.UTC)
	priority := 1
	return []models.RosterCourse{{
		GroupID: 12,
		Code:    "ENG4U1-01",
		Students: []models.RosterStudent{
			{
				PortalID: 501, GivenName: "Annabel", FamilyName: "Smith", BirthDate: &born,
				Contacts: []models.Contact{{
					FullName:       "Marie Smith",
					Relation:       strPtr("Mother"),
					Email:          strPtr("marie@example.org"),
					CellPhone:      strPtr("613-555-0100"),
					Correspondence: true,
					Priority:       &priority,
				}},
			},
			{PortalID: 502, GivenName: "Bao", FamilyName: "Tran"},
		},
	}}
}

func TestProvisionWritesRosterAndIsRepeatable(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsService()
	svc := NewProvisionService(db, nil, metrics, nil)
	ctx := context.Background()

	summary, err := svc.Sync(ctx, rosterStub{courses: sampleRoster()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Courses)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 1, summary.Contacts)

	_, err = svc.Provision(ctx, sampleRoster())
	require.NoError(t, err)

	var counts struct {
		Students int `db:"students"`
		Contacts int `db:"contacts"`
		Items    int `db:"items"`
	}
	require.NoError(t, db.Get(&counts, `SELECT
		(SELECT COUNT(*) FROM student) AS students,
		(SELECT COUNT(*) FROM student_contact) AS contacts,
		(SELECT COUNT(*) FROM contact_item) AS items`))
	assert.Equal(t, 2, counts.Students)
	assert.Equal(t, 1, counts.Contacts)
	assert.Equal(t, 2, counts.Items)
	assert.Equal(t, uint64(4), metrics.Snapshot().StudentsProvisioned)

	rows, err := repository.NewContactRepository(db).ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ContactExportRow{
		CourseCode: "ENG4U1-01", GivenName: "Annabel", FamilyName: "Smith",
		Contact: "Marie Smith", Relation: "Mother", Priority: "1",
		Email: "marie@example.org", CellPhone: "613-555-0100",
	}, rows[0])
}

func TestProvisionRejectsInvalidRoster(t *testing.T) {
	svc := NewProvisionService(newTestDB(t), nil, nil, nil)
	roster := sampleRoster()
	roster[0].Students[0].Contacts[0].Email = strPtr("not-an-email")

	_, err := svc.Provision(context.Background(), roster)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestProvisionPropagatesSourceError(t *testing.T) {
	svc := NewProvisionService(newTestDB(t), nil, nil, nil)
	boom := errors.New("portal down")
	_, err := svc.Sync(context.Background(), rosterStub{err: boom})
	assert.ErrorIs(t, err, boom)
}
