package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is one graded answer for one question of an attempt. Multiple
// submissions per (attempt, question) may exist; the one with the latest
// SubmittedAt is the current answer.
type Submission struct {
	ID          uuid.UUID       `json:"id"`
	AttemptID   uuid.UUID       `json:"attempt_id"`
	QuestionID  uuid.UUID       `json:"question_id"`
	Answer      string          `json:"answer"`
	Result      json.RawMessage `json:"result"`
	IsCorrect   bool            `json:"is_correct"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// QuestionResult is the normalized outcome of grading one submission. It is
// embedded in Submission.Result rather than persisted as its own row.
type QuestionResult struct {
	IsCorrect   bool             `json:"is_correct"`
	TotalCases  int              `json:"total_cases"`
	PassedCases int              `json:"passed_cases"`
	Message     string           `json:"message,omitempty"`
	Cases       []TestCaseResult `json:"cases,omitempty"`
}

// TestCaseResult is the outcome of one CODING test case.
type TestCaseResult struct {
	CaseNumber int    `json:"case_number"`
	Input      string `json:"input"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	Time       string `json:"time,omitempty"`
	Memory     int    `json:"memory,omitempty"`
	Passed     bool   `json:"passed"`
	Status     string `json:"status,omitempty"`
}
