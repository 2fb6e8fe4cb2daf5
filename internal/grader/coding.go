package grader

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeladder/exam-backend/internal/judge0"
	"github.com/codeladder/exam-backend/internal/model"
)

const noOutputSentinel = "no output"

// gradeCoding runs the submitted source against every hidden test case.
// Each case composes a complete program and blocks on a synchronous
// round-trip to the execution service.
func (g *Grader) gradeCoding(ctx context.Context, q *model.Question, answer string) (*model.QuestionResult, error) {
	cases, err := q.TestCases()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: no test cases", ErrMalformedQuestion)
	}

	target, ok := languageByName(q.Language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, q.Language)
	}

	source := normalizeSource(q.Language, answer)
	program := composeProgram(target, source, q.HarnessTemplate)

	result := &model.QuestionResult{
		TotalCases: len(cases),
		Cases:      make([]model.TestCaseResult, 0, len(cases)),
	}

	for i, tc := range cases {
		exec, err := g.runner.Execute(ctx, program, target.id, tc.Input)
		if err != nil {
			// Oracle failures are a grading outcome, not a session
			// failure; the connection must survive them.
			g.log.Error().Err(err).
				Str("question_id", q.ID.String()).
				Int("case", i+1).
				Msg("Code execution failed")
			result.IsCorrect = false
			result.Message = "code execution service unavailable"
			return result, nil
		}

		caseResult := classifyCase(i+1, tc, exec)
		if caseResult.Passed {
			result.PassedCases++
		}
		result.Cases = append(result.Cases, caseResult)
	}

	result.IsCorrect = result.PassedCases == result.TotalCases
	return result, nil
}

// classifyCase maps one execution outcome to a per-case result. Accepted
// runs compare trimmed stdout against the trimmed expectation; compile
// errors surface the diagnostic; everything else falls back through
// stderr, stdout and compile output.
func classifyCase(number int, tc model.TestCase, exec *judge0.ExecutionResult) model.TestCaseResult {
	var actual string
	passed := false

	switch exec.StatusID {
	case judge0.StatusAccepted:
		actual = strings.TrimSpace(exec.Stdout)
		passed = actual == strings.TrimSpace(tc.Expected)
	case judge0.StatusCompileError:
		actual = exec.CompileOutput
	default:
		actual = firstNonEmpty(exec.Stderr, exec.Stdout, exec.CompileOutput, noOutputSentinel)
	}

	return model.TestCaseResult{
		CaseNumber: number,
		Input:      tc.Input,
		Expected:   tc.Expected,
		Actual:     actual,
		Time:       exec.Time,
		Memory:     exec.Memory,
		Passed:     passed,
		Status:     exec.StatusDescription,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
