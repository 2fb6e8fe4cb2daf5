package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeladder/exam-backend/internal/model"
)

const attemptColumns = `id, student_id, exam_set_id, start_time, end_time,
	order_question_list, completion_rate, note`

// ExamAttemptRepository handles exam attempt data access. The attempt row is
// the only resource mutated by more than one actor (connections, the expiry
// sweeper, and the attempt-creation path), so every terminal update is a
// conditional "end_time IS NULL" write.
type ExamAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewExamAttemptRepository creates a new ExamAttemptRepository.
func NewExamAttemptRepository(pool *pgxpool.Pool) *ExamAttemptRepository {
	return &ExamAttemptRepository{pool: pool}
}

// GetByID retrieves an attempt by its UUID.
func (r *ExamAttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.StudentID, &a.ExamSetID, &a.StartTime, &a.EndTime,
		&a.OrderQuestionList, &a.CompletionRate, &a.Note)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt. The partial unique index on
// (student_id, exam_set_id) WHERE end_time IS NULL rejects a second open
// attempt; callers see that as a constraint error.
func (r *ExamAttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (student_id, exam_set_id)
		 VALUES ($1, $2)
		 RETURNING id, start_time`,
		a.StudentID, a.ExamSetID,
	).Scan(&a.ID, &a.StartTime)
}

// FindOpenByStudentAndSet returns the student's open attempt for a set, or
// pgx.ErrNoRows when none is open.
func (r *ExamAttemptRepository) FindOpenByStudentAndSet(ctx context.Context, studentID int, examSetID uuid.UUID) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts
		 WHERE student_id = $1 AND exam_set_id = $2 AND end_time IS NULL`,
		studentID, examSetID,
	).Scan(&a.ID, &a.StudentID, &a.ExamSetID, &a.StartTime, &a.EndTime,
		&a.OrderQuestionList, &a.CompletionRate, &a.Note)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CountByStudentAndSet counts all attempts (open or ended) of a student on a
// set. Used to enforce the ONE_TIME single-attempt rule.
func (r *ExamAttemptRepository) CountByStudentAndSet(ctx context.Context, studentID int, examSetID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_attempts
		 WHERE student_id = $1 AND exam_set_id = $2`,
		studentID, examSetID,
	).Scan(&n)
	return n, err
}

// SetQuestionOrderOnce persists the shuffled order for an attempt, but only
// if no order was written before. Returns true when this call won the write;
// false means another connection already fixed the order and the caller must
// re-read it.
func (r *ExamAttemptRepository) SetQuestionOrderOnce(ctx context.Context, id uuid.UUID, order string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET order_question_list = $2
		 WHERE id = $1 AND order_question_list IS NULL`,
		id, order,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// CloseIfOpen sets end_time only when the attempt is still open. Returns
// true when this call closed the attempt. Both a timer expiry and a
// concurrent new-attempt request may race here; exactly one wins.
func (r *ExamAttemptRepository) CloseIfOpen(ctx context.Context, id uuid.UUID, endTime time.Time) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET end_time = $2
		 WHERE id = $1 AND end_time IS NULL`,
		id, endTime,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// FinishIfOpen finalizes the attempt with completion rate and note, only
// when still open. Returns true when this call finished the attempt.
func (r *ExamAttemptRepository) FinishIfOpen(ctx context.Context, id uuid.UUID, endTime time.Time, completionRate float64, note string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET end_time = $2, completion_rate = $3, note = $4
		 WHERE id = $1 AND end_time IS NULL`,
		id, endTime, completionRate, note,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// CloseExpired closes every open attempt whose time limit has passed,
// computing end_time as start_time + limit rather than now. Returns the
// number of attempts closed.
func (r *ExamAttemptRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts a
		 SET end_time = a.start_time + make_interval(mins => s.time_limit_minutes)
		 FROM exam_sets s
		 WHERE a.exam_set_id = s.id
		   AND a.end_time IS NULL
		   AND a.start_time + make_interval(mins => s.time_limit_minutes) <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
