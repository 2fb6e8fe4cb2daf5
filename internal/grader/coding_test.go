package grader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/grader"
	"github.com/codeladder/exam-backend/internal/judge0"
	"github.com/codeladder/exam-backend/internal/model"
)

// fakeRunner scripts execution outcomes per call and records the composed
// programs it received.
type fakeRunner struct {
	results []*judge0.ExecutionResult
	err     error
	sources []string
	stdins  []string
}

func (f *fakeRunner) Execute(_ context.Context, source string, _ int, stdin string) (*judge0.ExecutionResult, error) {
	f.sources = append(f.sources, source)
	f.stdins = append(f.stdins, stdin)
	if f.err != nil {
		return nil, f.err
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result, nil
}

func accepted(stdout string) *judge0.ExecutionResult {
	return &judge0.ExecutionResult{
		Stdout:            stdout,
		StatusID:          judge0.StatusAccepted,
		StatusDescription: "Accepted",
	}
}

func codingQuestion(language, harness string) *model.Question {
	return &model.Question{
		Kind:            model.QuestionKindCoding,
		Language:        language,
		HarnessTemplate: harness,
		TestCaseList:    []byte(`[{"input":"1 2","expected":"3"},{"input":"5 5","expected":"10"}]`),
	}
}

func TestGradeCoding_AllCasesPass(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3\n"), accepted("10\n")}}
	g := grader.New(runner, zerolog.Nop())

	result, err := g.Grade(context.Background(), codingQuestion("python", "print(solve())"), "def solve(): ...")
	require.NoError(t, err)

	assert.True(t, result.IsCorrect)
	assert.Equal(t, 2, result.TotalCases)
	assert.Equal(t, 2, result.PassedCases)
	require.Len(t, result.Cases, 2)
	assert.True(t, result.Cases[0].Passed)
	assert.Equal(t, "3", result.Cases[0].Actual)

	// Input travels via stdin, never embedded in the program.
	assert.Equal(t, []string{"1 2", "5 5"}, runner.stdins)
}

func TestGradeCoding_OutputMismatch(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3"), accepted("11")}}
	g := grader.New(runner, zerolog.Nop())

	result, err := g.Grade(context.Background(), codingQuestion("python", "print(solve())"), "def solve(): ...")
	require.NoError(t, err)

	assert.False(t, result.IsCorrect)
	assert.Equal(t, 1, result.PassedCases)
	assert.False(t, result.Cases[1].Passed)
	assert.Equal(t, "11", result.Cases[1].Actual)
}

func TestGradeCoding_CompileErrorSurfacesDiagnostic(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{{
		CompileOutput:     "main.c:3: error: expected ';'",
		StatusID:          judge0.StatusCompileError,
		StatusDescription: "Compilation Error",
	}}}
	g := grader.New(runner, zerolog.Nop())

	result, err := g.Grade(context.Background(), codingQuestion("c", "int main() { solve(); }"), "int solve() { return 3 }")
	require.NoError(t, err)

	assert.False(t, result.IsCorrect)
	assert.Equal(t, "main.c:3: error: expected ';'", result.Cases[0].Actual)
	assert.False(t, result.Cases[0].Passed)
}

func TestGradeCoding_RuntimeFallbackOrder(t *testing.T) {
	tests := map[string]struct {
		exec       *judge0.ExecutionResult
		wantActual string
	}{
		"stderr first": {
			exec:       &judge0.ExecutionResult{Stderr: "panic", Stdout: "partial", StatusID: 11},
			wantActual: "panic",
		},
		"stdout second": {
			exec:       &judge0.ExecutionResult{Stdout: "partial", CompileOutput: "warn", StatusID: 11},
			wantActual: "partial",
		},
		"compile output third": {
			exec:       &judge0.ExecutionResult{CompileOutput: "warn", StatusID: 11},
			wantActual: "warn",
		},
		"sentinel when everything empty": {
			exec:       &judge0.ExecutionResult{StatusID: 11},
			wantActual: "no output",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &fakeRunner{results: []*judge0.ExecutionResult{tt.exec, tt.exec}}
			g := grader.New(runner, zerolog.Nop())

			result, err := g.Grade(context.Background(), codingQuestion("python", "print(solve())"), "def solve(): ...")
			require.NoError(t, err)
			assert.Equal(t, tt.wantActual, result.Cases[0].Actual)
		})
	}
}

func TestGradeCoding_RunnerUnavailable(t *testing.T) {
	runner := &fakeRunner{err: errors.New("connection refused")}
	g := grader.New(runner, zerolog.Nop())

	result, err := g.Grade(context.Background(), codingQuestion("python", "print(solve())"), "def solve(): ...")
	require.NoError(t, err, "an unreachable execution service is a grading outcome, not an error")

	assert.False(t, result.IsCorrect)
	assert.Equal(t, "code execution service unavailable", result.Message)
}

func TestGradeCoding_UnsupportedLanguage(t *testing.T) {
	g := grader.New(&fakeRunner{}, zerolog.Nop())

	_, err := g.Grade(context.Background(), codingQuestion("cobol", ""), "...")
	require.ErrorIs(t, err, grader.ErrUnsupportedLanguage)
}

func TestGradeCoding_NoTestCases(t *testing.T) {
	g := grader.New(&fakeRunner{}, zerolog.Nop())

	q := &model.Question{Kind: model.QuestionKindCoding, Language: "python"}
	_, err := g.Grade(context.Background(), q, "...")
	require.ErrorIs(t, err, grader.ErrMalformedQuestion)
}

func TestGradeCoding_SolutionSlotReplacement(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3"), accepted("10")}}
	g := grader.New(runner, zerolog.Nop())

	q := codingQuestion("python", "import sys\n{{solution}}\nprint(solve())")
	_, err := g.Grade(context.Background(), q, "def solve(): return 3")
	require.NoError(t, err)

	assert.Contains(t, runner.sources[0], "import sys\ndef solve(): return 3\nprint(solve())")
	assert.NotContains(t, runner.sources[0], "{{solution}}")
}

func TestGradeCoding_CSourceNormalization(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3"), accepted("10")}}
	g := grader.New(runner, zerolog.Nop())

	q := codingQuestion("c", "int main() { return solve(); }")
	_, err := g.Grade(context.Background(), q, "public int solve() { return 3; }")
	require.NoError(t, err)

	assert.NotContains(t, runner.sources[0], "public")
	assert.Contains(t, runner.sources[0], "int solve() { return 3; }")
}

func TestGradeCoding_UnitPrototypeFallback(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3"), accepted("10")}}
	g := grader.New(runner, zerolog.Nop())

	// Source without the expected entry point gets a forward declaration so
	// the compiler reports a link error rather than an implicit declaration.
	q := codingQuestion("c", "int main() { return 0; }")
	_, err := g.Grade(context.Background(), q, "int helper() { return 3; }")
	require.NoError(t, err)

	assert.Contains(t, runner.sources[0], "int solve();\n")
}

func TestGradeCoding_JavaClassWrap(t *testing.T) {
	runner := &fakeRunner{results: []*judge0.ExecutionResult{accepted("3"), accepted("10")}}
	g := grader.New(runner, zerolog.Nop())

	q := codingQuestion("java", "// harness")
	_, err := g.Grade(context.Background(), q, "int solve() { return 3; }")
	require.NoError(t, err)

	assert.Contains(t, runner.sources[0], "public class Solution {")
}
