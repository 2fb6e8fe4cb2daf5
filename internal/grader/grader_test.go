package grader_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/grader"
	"github.com/codeladder/exam-backend/internal/model"
)

func TestGrade_MultipleChoice(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	tests := map[string]struct {
		choices      string
		correctIndex int
		answer       string
		wantCorrect  bool
	}{
		"matches correct choice": {
			choices:      "red,green,blue",
			correctIndex: 2,
			answer:       "green",
			wantCorrect:  true,
		},
		"wrong choice": {
			choices:      "red,green,blue",
			correctIndex: 2,
			answer:       "blue",
			wantCorrect:  false,
		},
		"first choice is index one": {
			choices:      "red,green,blue",
			correctIndex: 1,
			answer:       "red",
			wantCorrect:  true,
		},
		"surrounding whitespace ignored": {
			choices:      "red, green ,blue",
			correctIndex: 2,
			answer:       "  green  ",
			wantCorrect:  true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			q := &model.Question{
				Kind:               model.QuestionKindMultipleChoice,
				ChoiceList:         tt.choices,
				CorrectChoiceIndex: tt.correctIndex,
			}
			result, err := g.Grade(context.Background(), q, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, result.IsCorrect)
			assert.Equal(t, 1, result.TotalCases)
		})
	}
}

func TestGrade_MultipleChoice_IndexOutOfRange(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	for _, idx := range []int{0, 4, -1} {
		q := &model.Question{
			Kind:               model.QuestionKindMultipleChoice,
			ChoiceList:         "a,b,c",
			CorrectChoiceIndex: idx,
		}
		_, err := g.Grade(context.Background(), q, "a")
		require.ErrorIs(t, err, grader.ErrMalformedQuestion)
	}
}

func TestGrade_FillInTheBlank(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	tests := map[string]struct {
		prompt        string
		blankAnswers  string
		caseSensitive bool
		answer        string
		wantCorrect   bool
		wantPassed    int
		wantTotal     int
	}{
		"all blanks correct": {
			prompt:       "___ speaks ___",
			blankAnswers: "go,json",
			answer:       "go,json",
			wantCorrect:  true,
			wantPassed:   2,
			wantTotal:    2,
		},
		"one blank wrong": {
			prompt:       "___ speaks ___",
			blankAnswers: "go,json",
			answer:       "go,xml",
			wantCorrect:  false,
			wantPassed:   1,
			wantTotal:    2,
		},
		"case insensitive by default": {
			prompt:       "the ___ keyword",
			blankAnswers: "defer",
			answer:       "DEFER",
			wantCorrect:  true,
			wantPassed:   1,
			wantTotal:    1,
		},
		"case sensitive flag enforced": {
			prompt:        "the ___ keyword",
			blankAnswers:  "defer",
			caseSensitive: true,
			answer:        "DEFER",
			wantCorrect:   false,
			wantPassed:    0,
			wantTotal:     1,
		},
		"token count mismatch is fully wrong": {
			prompt:       "___ and ___",
			blankAnswers: "a,b",
			answer:       "a",
			wantCorrect:  false,
			wantPassed:   0,
			wantTotal:    2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			q := &model.Question{
				Kind:          model.QuestionKindFillInTheBlank,
				Prompt:        tt.prompt,
				BlankAnswers:  tt.blankAnswers,
				CaseSensitive: tt.caseSensitive,
			}
			result, err := g.Grade(context.Background(), q, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, result.IsCorrect)
			assert.Equal(t, tt.wantPassed, result.PassedCases)
			assert.Equal(t, tt.wantTotal, result.TotalCases)
		})
	}
}

func TestGrade_FillInTheBlank_MismatchMessage(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	q := &model.Question{
		Kind:         model.QuestionKindFillInTheBlank,
		Prompt:       "___ and ___ and ___",
		BlankAnswers: "a,b,c",
	}
	result, err := g.Grade(context.Background(), q, "a,b")
	require.NoError(t, err)
	assert.Equal(t, "expected 3 answers, got 2", result.Message)
}

func TestGrade_Essay_AlwaysCorrect(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	q := &model.Question{Kind: model.QuestionKindEssay, Prompt: "Explain interfaces."}
	result, err := g.Grade(context.Background(), q, "anything at all")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.NotEmpty(t, result.Message)
}

func TestGrade_UnknownKind(t *testing.T) {
	g := grader.New(nil, zerolog.Nop())

	q := &model.Question{Kind: "TRUE_FALSE"}
	_, err := g.Grade(context.Background(), q, "true")
	require.ErrorIs(t, err, grader.ErrUnknownQuestionKind)
}
