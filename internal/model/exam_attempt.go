package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExamAttempt is one student's timed run through one exam set. The attempt
// becomes terminal once EndTime is set; at most one attempt per
// (student, exam set) may be open at any time.
type ExamAttempt struct {
	ID                uuid.UUID  `json:"id"`
	StudentID         int        `json:"student_id"`
	ExamSetID         uuid.UUID  `json:"exam_set_id"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	OrderQuestionList *string    `json:"order_question_list,omitempty"`
	CompletionRate    *float64   `json:"completion_rate,omitempty"`
	Note              *string    `json:"note,omitempty"`
}

// Ended reports whether the attempt is terminal.
func (a *ExamAttempt) Ended() bool {
	return a.EndTime != nil
}

// ExpiresAt returns the moment the attempt's time limit runs out.
func (a *ExamAttempt) ExpiresAt(limitMinutes int) time.Time {
	return a.StartTime.Add(time.Duration(limitMinutes) * time.Minute)
}

// Expired reports whether the time limit has passed at the given instant.
func (a *ExamAttempt) Expired(limitMinutes int, now time.Time) bool {
	return !now.Before(a.ExpiresAt(limitMinutes))
}

// RemainingSeconds returns the whole seconds left on the clock, never
// negative.
func (a *ExamAttempt) RemainingSeconds(limitMinutes int, now time.Time) int64 {
	remaining := a.ExpiresAt(limitMinutes).Sub(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}

// QuestionOrder parses the persisted order list, or nil when unset.
func (a *ExamAttempt) QuestionOrder() ([]uuid.UUID, error) {
	if a.OrderQuestionList == nil || *a.OrderQuestionList == "" {
		return nil, nil
	}
	return ParseQuestionOrder(*a.OrderQuestionList)
}

// ParseQuestionOrder splits a comma-joined question id list.
func ParseQuestionOrder(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse question order: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JoinQuestionOrder serializes a question id list as comma-joined text.
// The serialized form is persisted once per attempt and must round-trip
// byte-identically.
func JoinQuestionOrder(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// AttemptSnapshot is the full session state broadcast to every connection of
// an attempt after any mutation, and sent to a joining connection.
type AttemptSnapshot struct {
	Attempt          *ExamAttempt        `json:"attempt"`
	ExamSetType      ExamSetType         `json:"exam_set_type"`
	Questions        []SanitizedQuestion `json:"questions"`
	QuestionOrder    []uuid.UUID         `json:"question_order"`
	Submissions      []Submission        `json:"submissions"`
	RemainingSeconds int64               `json:"remaining_seconds"`
}

// StartAttemptRequest is the payload for opening a new attempt.
type StartAttemptRequest struct {
	ExamSetID string `json:"exam_set_id" binding:"required,uuid"`
}
