package websocket

import (
	"time"

	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/response"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionJoinExamAttempt   Action = "joinExamAttempt"
	ActionSubmitAnswer      Action = "submitAnswer"
	ActionFinishExamAttempt Action = "finishExamAttempt"
)

// Envelope carries every client request; fields beyond Action and AttemptID
// are action-specific.
type Envelope struct {
	Action    Action `json:"action"`
	AttemptID string `json:"attemptId"`
	// submitAnswer
	QuestionID string `json:"questionId,omitempty"`
	Answer     string `json:"answer,omitempty"`
	// finishExamAttempt
	Note string `json:"note,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventJoinSuccess  Event = "joinExamAttemptSuccess"
	EventAnswerResult Event = "answerResult"
	EventExamFinished Event = "examFinished"
	EventAttemptState Event = "examAttemptState"
	EventTimeUpdate   Event = "examTimeUpdate"
	EventTimeUp       Event = "examTimeUp"
	EventError        Event = "error"
)

// JoinSuccessPayload is sent to the joining connection only.
type JoinSuccessPayload struct {
	Event     Event                     `json:"event"`
	Attempt   *model.ExamAttempt        `json:"attempt"`
	Questions []model.SanitizedQuestion `json:"sanitizedQuestions"`
}

// AnswerResultPayload carries the grading outcome to the submitter only.
type AnswerResultPayload struct {
	Event  Event                 `json:"event"`
	Result *model.QuestionResult `json:"result"`
}

// ExamFinishedPayload confirms finalization to the caller.
type ExamFinishedPayload struct {
	Event          Event     `json:"event"`
	AttemptID      string    `json:"attemptId"`
	EndTime        time.Time `json:"endTime"`
	CompletionRate float64   `json:"completionRate"`
	TotalAnswered  int       `json:"totalAnswered"`
	CorrectAnswers int       `json:"correctAnswers"`
	Note           string    `json:"note"`
}

// AttemptStatePayload is broadcast to every connection of the attempt after
// each persisted mutation.
type AttemptStatePayload struct {
	Event    Event                  `json:"event"`
	Snapshot *model.AttemptSnapshot `json:"snapshot"`
}

// TimeUpdatePayload is emitted by the per-connection timer every second.
type TimeUpdatePayload struct {
	Event        Event  `json:"event"`
	TimeLeft     string `json:"timeLeft"`
	TotalSeconds int64  `json:"totalSeconds"`
}

// TimeUpPayload is the timer's terminal signal, emitted once.
type TimeUpPayload struct {
	Event Event `json:"event"`
}

// ErrorPayload is a structured, non-fatal error event; the connection stays
// open after receiving one.
type ErrorPayload struct {
	Event       Event            `json:"event"`
	Code        response.ErrCode `json:"code"`
	Description string           `json:"description"`
}
