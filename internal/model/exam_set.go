package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamSetType enumerates how attempts on a set are limited.
type ExamSetType string

const (
	// ExamSetTypeOneTime allows a single attempt per student, ever.
	ExamSetTypeOneTime ExamSetType = "ONE_TIME"
	// ExamSetTypeFree allows unlimited re-attempts.
	ExamSetTypeFree ExamSetType = "FREE"
	// ExamSetTypeInterviewTraining behaves like FREE but is surfaced
	// separately in the client.
	ExamSetTypeInterviewTraining ExamSetType = "INTERVIEW_TRAINING"
)

// ExamSet represents a published collection of questions with a time limit.
// Authoring is handled elsewhere; the session engine only reads these rows.
type ExamSet struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	TimeLimitMinutes int         `json:"time_limit_minutes"`
	QuestionCount    int         `json:"question_count"`
	Type             ExamSetType `json:"type"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TimeLimit returns the set's time limit as a duration.
func (s *ExamSet) TimeLimit() time.Duration {
	return time.Duration(s.TimeLimitMinutes) * time.Minute
}
