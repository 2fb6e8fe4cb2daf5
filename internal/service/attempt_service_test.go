package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/model"
)

func TestDefaultFinishNote(t *testing.T) {
	endTime := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "Finished by student at 2026-03-01T10:30:00Z", defaultFinishNote(endTime))

	// Non-UTC end times normalize, so notes compare across timezones.
	loc := time.FixedZone("UTC+7", 7*3600)
	assert.Equal(t, "Finished by student at 2026-03-01T10:30:00Z", defaultFinishNote(endTime.In(loc)))
}

func TestOrderSanitized(t *testing.T) {
	q1 := model.SanitizedQuestion{ID: uuid.New(), Prompt: "one"}
	q2 := model.SanitizedQuestion{ID: uuid.New(), Prompt: "two"}
	q3 := model.SanitizedQuestion{ID: uuid.New(), Prompt: "three"}

	ordered := orderSanitized(
		[]model.SanitizedQuestion{q1, q2, q3},
		[]uuid.UUID{q3.ID, q1.ID, q2.ID},
	)

	require.Len(t, ordered, 3)
	assert.Equal(t, []model.SanitizedQuestion{q3, q1, q2}, ordered)
}

func TestOrderSanitized_SkipsUnknownIDs(t *testing.T) {
	q1 := model.SanitizedQuestion{ID: uuid.New()}

	ordered := orderSanitized(
		[]model.SanitizedQuestion{q1},
		[]uuid.UUID{uuid.New(), q1.ID},
	)

	require.Len(t, ordered, 1)
	assert.Equal(t, q1.ID, ordered[0].ID)
}
