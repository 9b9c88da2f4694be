package gradebook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRetakes(t *testing.T) {
	at := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
	sheet := buildSheet("Retakes",
		[]any{"Timestamp", "Course", "Email", "Student", "Evaluation", "Section", "G1", "G2", "G3", "G4"},
		[]any{at, "ENG4U1", "x@example.org", "Ann", 2, "Tests", 3, 4, "", 2},
		[]any{at, "ENG4U1", "y@example.org", "Bo (x)", 1, "Homework", 1, 2, 3, 4},
		[]any{nil, nil, nil, nil, nil, nil, 4, 3},
		[]any{"not a date", "ENG4U1", "", "Cy", 1, "Tests", 1},
		[]any{at, "ENG4U1", "", "Di", "", "Tests", 1},
	)

	retakes := ReadRetakes(sheet)

	require.Len(t, retakes, 2)
	ann := retakes[0]
	assert.Equal(t, "Ann", ann.PreferredName)
	assert.False(t, ann.Excluded)
	assert.Equal(t, 2, ann.Evaluation)
	assert.Equal(t, "Tests", ann.Section)
	assert.Equal(t, at, ann.TakenAt)
	assert.Equal(t, []float64{3, 4}, ann.Grades)

	bo := retakes[1]
	assert.Equal(t, "Bo", bo.PreferredName)
	assert.True(t, bo.Excluded)
	assert.Equal(t, []float64{1, 2, 3, 4, 4, 3}, bo.Grades)
}
