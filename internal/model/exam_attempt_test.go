package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/model"
)

func TestExamAttempt_Expiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	attempt := &model.ExamAttempt{StartTime: start}

	assert.Equal(t, start.Add(90*time.Minute), attempt.ExpiresAt(90))

	assert.False(t, attempt.Expired(90, start.Add(89*time.Minute)))
	assert.True(t, attempt.Expired(90, start.Add(90*time.Minute)))
	assert.True(t, attempt.Expired(90, start.Add(2*time.Hour)))
}

func TestExamAttempt_RemainingSeconds(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	attempt := &model.ExamAttempt{StartTime: start}

	assert.Equal(t, int64(3600), attempt.RemainingSeconds(60, start))
	assert.Equal(t, int64(1), attempt.RemainingSeconds(60, start.Add(59*time.Minute+59*time.Second)))
	assert.Equal(t, int64(0), attempt.RemainingSeconds(60, start.Add(61*time.Minute)), "never negative")
}

func TestQuestionOrder_RoundTrip(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	serialized := model.JoinQuestionOrder(ids)
	parsed, err := model.ParseQuestionOrder(serialized)
	require.NoError(t, err)
	assert.Equal(t, ids, parsed)

	// The persisted form must be stable so rejoins see identical bytes.
	assert.Equal(t, serialized, model.JoinQuestionOrder(parsed))
}

func TestQuestionOrder_Unset(t *testing.T) {
	attempt := &model.ExamAttempt{}
	order, err := attempt.QuestionOrder()
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestParseQuestionOrder_Invalid(t *testing.T) {
	_, err := model.ParseQuestionOrder("not-a-uuid,also-bad")
	require.Error(t, err)
}

func TestQuestion_BlankCount(t *testing.T) {
	q := &model.Question{Prompt: "A ___ walks into a ___ and says ___"}
	assert.Equal(t, 3, q.BlankCount())
}

func TestQuestion_Sanitized(t *testing.T) {
	q := model.Question{
		ID:                 uuid.New(),
		Kind:               model.QuestionKindMultipleChoice,
		Prompt:             "pick one",
		ChoiceList:         "a,b,c",
		CorrectChoiceIndex: 2,
		BlankAnswers:       "secret",
		TestCaseList:       []byte(`[{"input":"1","expected":"2"}]`),
		HarnessTemplate:    "print(solve())",
	}

	s := q.Sanitized()
	assert.Equal(t, q.ID, s.ID)
	assert.Equal(t, q.ChoiceList, s.ChoiceList)

	// Answer-bearing fields must not survive sanitization in any form the
	// client could read.
	assert.NotContains(t, string(mustJSON(t, s)), "secret")
	assert.NotContains(t, string(mustJSON(t, s)), "correct_choice_index")
	assert.NotContains(t, string(mustJSON(t, s)), "expected")
	assert.NotContains(t, string(mustJSON(t, s)), "harness")
}
