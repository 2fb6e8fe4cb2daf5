package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// QuestionKind determines which grading strategy applies to a question.
type QuestionKind string

const (
	QuestionKindMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	QuestionKindCoding         QuestionKind = "CODING"
	QuestionKindFillInTheBlank QuestionKind = "FILL_IN_THE_BLANK"
	QuestionKindEssay          QuestionKind = "ESSAY"
)

// BlankMarker is the token that marks a blank in a FILL_IN_THE_BLANK prompt.
const BlankMarker = "___"

// Question represents a single exam question with kind-specific fields.
// Only the fields matching the Kind are populated; the rest stay zero.
type Question struct {
	ID        uuid.UUID    `json:"id"`
	ExamSetID uuid.UUID    `json:"exam_set_id"`
	Kind      QuestionKind `json:"kind"`
	Prompt    string       `json:"prompt"`

	// MULTIPLE_CHOICE. ChoiceList is comma-joined; CorrectChoiceIndex is
	// 1-based into the split list. The 1-based convention is historical
	// and baked into existing data — do not "fix" it here.
	ChoiceList         string `json:"choice_list,omitempty"`
	CorrectChoiceIndex int    `json:"correct_choice_index,omitempty"`

	// CODING
	InitCode        string          `json:"init_code,omitempty"`
	TestCaseList    json.RawMessage `json:"test_case_list,omitempty"`
	Language        string          `json:"language,omitempty"`
	HarnessTemplate string          `json:"harness_template,omitempty"`

	// FILL_IN_THE_BLANK. BlankAnswers is comma-joined, one token per blank.
	BlankAnswers  string `json:"blank_answers,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`

	OrderNum int `json:"order_num"`
}

// TestCase is one hidden input/expected pair for a CODING question.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// TestCases deserializes the hidden test-case list of a CODING question.
func (q *Question) TestCases() ([]TestCase, error) {
	if len(q.TestCaseList) == 0 {
		return nil, nil
	}
	var cases []TestCase
	if err := json.Unmarshal(q.TestCaseList, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// BlankCount returns the number of blank markers in the prompt.
func (q *Question) BlankCount() int {
	return strings.Count(q.Prompt, BlankMarker)
}

// SanitizedQuestion is a question as sent to students. The correct-choice
// index, blank answers, hidden test cases and the harness template must
// never reach the client.
type SanitizedQuestion struct {
	ID         uuid.UUID    `json:"id"`
	Kind       QuestionKind `json:"kind"`
	Prompt     string       `json:"prompt"`
	ChoiceList string       `json:"choice_list,omitempty"`
	InitCode   string       `json:"init_code,omitempty"`
	Language   string       `json:"language,omitempty"`
	OrderNum   int          `json:"order_num"`
}

// Sanitized strips all answer-bearing fields from the question.
func (q *Question) Sanitized() SanitizedQuestion {
	return SanitizedQuestion{
		ID:         q.ID,
		Kind:       q.Kind,
		Prompt:     q.Prompt,
		ChoiceList: q.ChoiceList,
		InitCode:   q.InitCode,
		Language:   q.Language,
		OrderNum:   q.OrderNum,
	}
}

// SanitizeQuestions maps a question list to its client-safe form.
func SanitizeQuestions(questions []Question) []SanitizedQuestion {
	out := make([]SanitizedQuestion, len(questions))
	for i := range questions {
		out[i] = questions[i].Sanitized()
	}
	return out
}
