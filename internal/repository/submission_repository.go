package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeladder/exam-backend/internal/model"
)

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a new submission row with its grading result.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (attempt_id, question_id, answer, result, is_correct)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, submitted_at`,
		s.AttemptID, s.QuestionID, s.Answer, s.Result, s.IsCorrect,
	).Scan(&s.ID, &s.SubmittedAt)
}

// ListByAttempt retrieves every submission of an attempt, oldest first. The
// client reduces to the latest per question; the server sends all.
func (r *SubmissionRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attempt_id, question_id, answer, result, is_correct, submitted_at
		 FROM submissions
		 WHERE attempt_id = $1
		 ORDER BY submitted_at`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.AttemptID, &s.QuestionID, &s.Answer,
			&s.Result, &s.IsCorrect, &s.SubmittedAt); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// HasSubmission reports whether at least one submission exists for the
// question in this attempt.
func (r *SubmissionRepository) HasSubmission(ctx context.Context, attemptID, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE attempt_id = $1 AND question_id = $2
		)`, attemptID, questionID,
	).Scan(&exists)
	return exists, err
}

// CountAnswered counts the distinct questions of an attempt that have at
// least one submission.
func (r *SubmissionRepository) CountAnswered(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT question_id) FROM submissions WHERE attempt_id = $1`,
		attemptID,
	).Scan(&n)
	return n, err
}

// CountCorrectLatest counts the questions whose most recent submission is
// correct. Recency, not any earlier correct answer, decides.
func (r *SubmissionRepository) CountCorrectLatest(ctx context.Context, attemptID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (question_id) is_correct
			FROM submissions
			WHERE attempt_id = $1
			ORDER BY question_id, submitted_at DESC
		) latest
		WHERE latest.is_correct`, attemptID,
	).Scan(&n)
	return n, err
}
