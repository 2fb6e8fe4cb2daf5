package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffledOrder_IsPermutation(t *testing.T) {
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		ids[i] = uuid.New()
	}

	order := shuffledOrder(ids)
	require.Len(t, order, len(ids))
	assert.ElementsMatch(t, ids, order)
}

func TestShuffledOrder_DoesNotMutateInput(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	original := make([]uuid.UUID, len(ids))
	copy(original, ids)

	shuffledOrder(ids)
	assert.Equal(t, original, ids)
}

func TestCompletionRate(t *testing.T) {
	tests := map[string]struct {
		correct       int
		questionCount int
		want          float64
	}{
		"three of four":  {3, 4, 75},
		"all correct":    {10, 10, 100},
		"none correct":   {0, 5, 0},
		"zero questions": {0, 0, 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, completionRate(tt.correct, tt.questionCount))
		})
	}
}
