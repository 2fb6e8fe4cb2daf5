package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/grader"
	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/repository"
)

// Domain errors surfaced to handlers, which map them to stable error codes.
var (
	ErrExamSetNotFound     = errors.New("exam set not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrUnauthorizedAccess  = errors.New("attempt belongs to another student")
	ErrExamEnded           = errors.New("exam attempt already ended")
	ErrAttemptLimitReached = errors.New("attempt limit reached for this exam set")
	ErrAttemptInProgress   = errors.New("an attempt is already in progress")
	ErrAlreadyAnswered     = errors.New("question already answered")
)

const uniqueViolationCode = "23505"

// AttemptService owns the attempt lifecycle: starting, joining, answering,
// finishing, and the expiry rules that run across all of them.
type AttemptService struct {
	examSets    *repository.ExamSetRepository
	questions   *repository.QuestionRepository
	attempts    *repository.ExamAttemptRepository
	submissions *repository.SubmissionRepository
	sequencer   *Sequencer
	grader      *grader.Grader
	cache       *PayloadCache
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	examSets *repository.ExamSetRepository,
	questions *repository.QuestionRepository,
	attempts *repository.ExamAttemptRepository,
	submissions *repository.SubmissionRepository,
	sequencer *Sequencer,
	grd *grader.Grader,
	cache *PayloadCache,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		examSets:    examSets,
		questions:   questions,
		attempts:    attempts,
		submissions: submissions,
		sequencer:   sequencer,
		grader:      grd,
		cache:       cache,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// FinishSummary is the terminal report of a finished attempt.
type FinishSummary struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	EndTime        time.Time `json:"end_time"`
	CompletionRate float64   `json:"completion_rate"`
	TotalAnswered  int       `json:"total_answered"`
	CorrectAnswers int       `json:"correct_answers"`
	Note           string    `json:"note,omitempty"`
}

// ─── lifecycle ───

// Start opens a new attempt on an exam set for a student. ONE_TIME sets
// refuse a second attempt ever; other set types refuse only while another
// attempt is still open. An open attempt whose clock already ran out is
// closed here and does not block the new one.
func (s *AttemptService) Start(ctx context.Context, studentID int, examSetID uuid.UUID) (*model.ExamAttempt, error) {
	set, err := s.examSets.GetByID(ctx, examSetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamSetNotFound
		}
		return nil, fmt.Errorf("load exam set: %w", err)
	}

	if set.Type == model.ExamSetTypeOneTime {
		n, err := s.attempts.CountByStudentAndSet(ctx, studentID, examSetID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}
		if n > 0 {
			return nil, ErrAttemptLimitReached
		}
	}

	open, err := s.attempts.FindOpenByStudentAndSet(ctx, studentID, examSetID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find open attempt: %w", err)
	}
	if open != nil {
		if !open.Expired(set.TimeLimitMinutes, time.Now()) {
			return nil, ErrAttemptInProgress
		}
		// Stale open attempt: close it at its deadline, not at now.
		if _, err := s.attempts.CloseIfOpen(ctx, open.ID, open.ExpiresAt(set.TimeLimitMinutes)); err != nil {
			return nil, fmt.Errorf("close expired attempt: %w", err)
		}
		s.log.Info().
			Str("attempt_id", open.ID.String()).
			Int("student_id", studentID).
			Msg("expired attempt closed on start")
	}

	attempt := &model.ExamAttempt{StudentID: studentID, ExamSetID: examSetID}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		// The partial unique index catches a concurrent start racing past
		// the open-attempt check above.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrAttemptInProgress
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_set_id", examSetID.String()).
		Int("student_id", studentID).
		Msg("attempt started")
	return attempt, nil
}

// Join resolves an attempt for a connecting student and returns its full
// snapshot. An attempt that is ended, or whose clock ran out while nobody
// was connected, cannot be joined; the stale case is closed here first.
func (s *AttemptService) Join(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.AttemptSnapshot, *model.ExamSet, error) {
	attempt, set, err := s.authorize(ctx, studentID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureOpen(ctx, attempt, set); err != nil {
		return nil, nil, err
	}

	snapshot, err := s.Snapshot(ctx, attempt, set)
	if err != nil {
		return nil, nil, err
	}
	return snapshot, set, nil
}

// SubmitAnswer grades and records one answer. MULTIPLE_CHOICE and ESSAY
// questions accept a single submission per attempt; CODING and
// FILL_IN_THE_BLANK may be retried, with the latest submission counting.
func (s *AttemptService) SubmitAnswer(ctx context.Context, studentID int, attemptID, questionID uuid.UUID, answer string) (*model.Submission, *model.QuestionResult, error) {
	attempt, set, err := s.authorize(ctx, studentID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureOpen(ctx, attempt, set); err != nil {
		return nil, nil, err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrQuestionNotFound
		}
		return nil, nil, fmt.Errorf("load question: %w", err)
	}
	if question.ExamSetID != attempt.ExamSetID {
		return nil, nil, ErrQuestionNotFound
	}

	if question.Kind == model.QuestionKindMultipleChoice || question.Kind == model.QuestionKindEssay {
		answered, err := s.submissions.HasSubmission(ctx, attempt.ID, question.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check prior submission: %w", err)
		}
		if answered {
			return nil, nil, ErrAlreadyAnswered
		}
	}

	result, err := s.grader.Grade(ctx, question, answer)
	if err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	submission := &model.Submission{
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
		Answer:     answer,
		Result:     raw,
		IsCorrect:  result.IsCorrect,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, nil, fmt.Errorf("record submission: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("question_id", question.ID.String()).
		Str("kind", string(question.Kind)).
		Bool("is_correct", result.IsCorrect).
		Msg("answer graded")
	return submission, result, nil
}

// Finish closes the attempt and computes its completion rate: the share of
// questions whose latest submission is correct, over the set's question
// count. Two connections racing to finish resolve to a single winner; the
// loser gets ErrExamEnded.
func (s *AttemptService) Finish(ctx context.Context, studentID int, attemptID uuid.UUID, note string) (*FinishSummary, error) {
	attempt, set, err := s.authorize(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Ended() {
		return nil, ErrExamEnded
	}

	correct, err := s.submissions.CountCorrectLatest(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("count correct answers: %w", err)
	}
	answered, err := s.submissions.CountAnswered(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("count answered questions: %w", err)
	}

	endTime := time.Now()
	if attempt.Expired(set.TimeLimitMinutes, endTime) {
		endTime = attempt.ExpiresAt(set.TimeLimitMinutes)
	}
	if note == "" {
		note = defaultFinishNote(endTime)
	}
	rate := completionRate(correct, set.QuestionCount)

	won, err := s.attempts.FinishIfOpen(ctx, attempt.ID, endTime, rate, note)
	if err != nil {
		return nil, fmt.Errorf("finish attempt: %w", err)
	}
	if !won {
		return nil, ErrExamEnded
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Float64("completion_rate", rate).
		Int("correct", correct).
		Int("answered", answered).
		Msg("attempt finished")
	return &FinishSummary{
		AttemptID:      attempt.ID,
		EndTime:        endTime,
		CompletionRate: rate,
		TotalAnswered:  answered,
		CorrectAnswers: correct,
		Note:           note,
	}, nil
}

// ─── snapshot ───

// Snapshot assembles the full session state of an attempt: the attempt row,
// the sanitized questions arranged in the persisted order, every submission,
// and the remaining seconds on the clock.
func (s *AttemptService) Snapshot(ctx context.Context, attempt *model.ExamAttempt, set *model.ExamSet) (*model.AttemptSnapshot, error) {
	questions, err := s.questions.ListByExamSet(ctx, attempt.ExamSetID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	order, err := s.sequencer.Resolve(ctx, attempt, questions)
	if err != nil {
		return nil, err
	}

	sanitized, ok := s.cache.GetQuestions(ctx, attempt.ExamSetID.String())
	if !ok {
		sanitized = model.SanitizeQuestions(questions)
		s.cache.SetQuestions(ctx, attempt.ExamSetID.String(), sanitized)
	}
	sanitized = orderSanitized(sanitized, order)

	submissions, err := s.submissions.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	return &model.AttemptSnapshot{
		Attempt:          attempt,
		ExamSetType:      set.Type,
		Questions:        sanitized,
		QuestionOrder:    order,
		Submissions:      submissions,
		RemainingSeconds: attempt.RemainingSeconds(set.TimeLimitMinutes, time.Now()),
	}, nil
}

// GetSnapshot loads and authorizes an attempt, then builds its snapshot.
// Serves the read-only HTTP view; ended attempts are still visible here.
func (s *AttemptService) GetSnapshot(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.AttemptSnapshot, error) {
	attempt, set, err := s.authorize(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(ctx, attempt, set)
}

// CloseExpired closes the attempt at its deadline if its clock has run out.
// Used by the per-connection timer when it fires.
func (s *AttemptService) CloseExpired(ctx context.Context, attemptID uuid.UUID) error {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("load attempt: %w", err)
	}
	if attempt.Ended() {
		return nil
	}
	set, err := s.examSets.GetByID(ctx, attempt.ExamSetID)
	if err != nil {
		return fmt.Errorf("load exam set: %w", err)
	}
	if _, err := s.attempts.CloseIfOpen(ctx, attempt.ID, attempt.ExpiresAt(set.TimeLimitMinutes)); err != nil {
		return fmt.Errorf("close attempt: %w", err)
	}
	return nil
}

// ─── helpers ───

// authorize loads the attempt and its set, enforcing ownership.
func (s *AttemptService) authorize(ctx context.Context, studentID int, attemptID uuid.UUID) (*model.ExamAttempt, *model.ExamSet, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, nil, ErrUnauthorizedAccess
	}
	set, err := s.examSets.GetByID(ctx, attempt.ExamSetID)
	if err != nil {
		return nil, nil, fmt.Errorf("load exam set: %w", err)
	}
	return attempt, set, nil
}

// ensureOpen rejects ended attempts and lazily closes one whose time limit
// passed while no connection was alive to notice.
func (s *AttemptService) ensureOpen(ctx context.Context, attempt *model.ExamAttempt, set *model.ExamSet) error {
	if attempt.Ended() {
		return ErrExamEnded
	}
	if attempt.Expired(set.TimeLimitMinutes, time.Now()) {
		deadline := attempt.ExpiresAt(set.TimeLimitMinutes)
		if _, err := s.attempts.CloseIfOpen(ctx, attempt.ID, deadline); err != nil {
			return fmt.Errorf("close expired attempt: %w", err)
		}
		attempt.EndTime = &deadline
		return ErrExamEnded
	}
	return nil
}

// defaultFinishNote fills the attempt note when the student leaves it
// blank; the note column is what staff see, so it is never empty on a
// finished attempt.
func defaultFinishNote(endTime time.Time) string {
	return "Finished by student at " + endTime.UTC().Format(time.RFC3339)
}

// completionRate is correct answers over the set's question count, as a
// percentage. A set with zero questions rates zero rather than dividing.
func completionRate(correct, questionCount int) float64 {
	if questionCount <= 0 {
		return 0
	}
	return float64(correct) / float64(questionCount) * 100
}

// orderSanitized arranges client-safe questions to the persisted order.
func orderSanitized(questions []model.SanitizedQuestion, order []uuid.UUID) []model.SanitizedQuestion {
	byID := make(map[uuid.UUID]model.SanitizedQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]model.SanitizedQuestion, 0, len(order))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered
}
