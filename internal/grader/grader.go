// Package grader turns a question and a raw answer into a normalized
// QuestionResult. Grading is pure per kind except CODING, which round-trips
// to the code execution service.
package grader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/judge0"
	"github.com/codeladder/exam-backend/internal/model"
)

// Domain errors.
var (
	ErrUnknownQuestionKind = errors.New("unknown question kind")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrMalformedQuestion   = errors.New("malformed question data")
)

// CodeRunner executes one composed program against the code execution
// service. Satisfied by *judge0.Client.
type CodeRunner interface {
	Execute(ctx context.Context, source string, languageID int, stdin string) (*judge0.ExecutionResult, error)
}

// Grader dispatches grading by question kind.
type Grader struct {
	runner CodeRunner
	log    zerolog.Logger
}

// New creates a Grader. runner is only used for CODING questions.
func New(runner CodeRunner, log zerolog.Logger) *Grader {
	return &Grader{
		runner: runner,
		log:    log.With().Str("component", "grader").Logger(),
	}
}

// Grade evaluates a raw answer against a question. The dispatch is total
// over the four kinds; an unrecognized kind is an error, never a skipped
// grade.
func (g *Grader) Grade(ctx context.Context, q *model.Question, answer string) (*model.QuestionResult, error) {
	switch q.Kind {
	case model.QuestionKindMultipleChoice:
		return gradeMultipleChoice(q, answer)
	case model.QuestionKindFillInTheBlank:
		return gradeFillInTheBlank(q, answer), nil
	case model.QuestionKindEssay:
		return gradeEssay(), nil
	case model.QuestionKindCoding:
		return g.gradeCoding(ctx, q, answer)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionKind, q.Kind)
	}
}

// gradeMultipleChoice compares the trimmed answer against the stored correct
// choice. CorrectChoiceIndex is 1-based into the comma-split choice list.
func gradeMultipleChoice(q *model.Question, answer string) (*model.QuestionResult, error) {
	choices := strings.Split(q.ChoiceList, ",")
	idx := q.CorrectChoiceIndex - 1
	if idx < 0 || idx >= len(choices) {
		return nil, fmt.Errorf("%w: correct choice index %d out of range", ErrMalformedQuestion, q.CorrectChoiceIndex)
	}

	correct := strings.TrimSpace(answer) == strings.TrimSpace(choices[idx])

	result := &model.QuestionResult{
		IsCorrect:  correct,
		TotalCases: 1,
	}
	if correct {
		result.PassedCases = 1
	}
	return result, nil
}

// gradeFillInTheBlank compares comma-split answer tokens against the stored
// list, one token per blank marker in the prompt. A token-count mismatch is
// fully incorrect.
func gradeFillInTheBlank(q *model.Question, answer string) *model.QuestionResult {
	blanks := q.BlankCount()
	correctTokens := splitTrimmed(q.BlankAnswers)
	submittedTokens := splitTrimmed(answer)

	if len(submittedTokens) != blanks {
		return &model.QuestionResult{
			IsCorrect:   false,
			TotalCases:  blanks,
			PassedCases: 0,
			Message:     fmt.Sprintf("expected %d answers, got %d", blanks, len(submittedTokens)),
		}
	}

	passed := 0
	for i := 0; i < blanks && i < len(correctTokens); i++ {
		if tokensEqual(submittedTokens[i], correctTokens[i], q.CaseSensitive) {
			passed++
		}
	}

	return &model.QuestionResult{
		IsCorrect:   passed == blanks,
		TotalCases:  blanks,
		PassedCases: passed,
	}
}

// gradeEssay is a placeholder outcome so the client can proceed; the real
// evaluation happens offline by a human reviewer.
func gradeEssay() *model.QuestionResult {
	return &model.QuestionResult{
		IsCorrect:   true,
		TotalCases:  1,
		PassedCases: 1,
		Message:     "Essay answers are evaluated by a human reviewer.",
	}
}

func splitTrimmed(raw string) []string {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func tokensEqual(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
