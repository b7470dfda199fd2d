package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Status
		to      models.Status
		wantErr bool
	}{
		{"created to in-progress", models.StatusCreated, models.StatusInProgress, false},
		{"same status", models.StatusInProgress, models.StatusInProgress, false},
		{"completed again", models.StatusCompleted, models.StatusCompleted, false},
		{"in-progress back to created", models.StatusInProgress, models.StatusCreated, true},
		{"completed back to in-progress", models.StatusCompleted, models.StatusInProgress, true},
		{"completed back to created", models.StatusCompleted, models.StatusCreated, true},
		{"plain update to completed", models.StatusInProgress, models.StatusCompleted, true},
		{"unknown target", models.StatusCreated, models.Status("archived"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInterviewFilterNormalize(t *testing.T) {
	f := InterviewFilter{Page: 0, Limit: 0}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	f = InterviewFilter{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 100, f.Limit)
}

func TestDedupeIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Empty(t, dedupeIDs(nil))
	assert.Equal(t, []uuid.UUID{a, b}, dedupeIDs([]uuid.UUID{a, b, a, b}))
}
