package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeladder/exam-backend/internal/model"
)

// ExamSetRepository handles exam set data access. The session engine only
// reads sets; authoring writes happen in another service.
type ExamSetRepository struct {
	pool *pgxpool.Pool
}

// NewExamSetRepository creates a new ExamSetRepository.
func NewExamSetRepository(pool *pgxpool.Pool) *ExamSetRepository {
	return &ExamSetRepository{pool: pool}
}

// GetByID retrieves an exam set by its UUID.
func (r *ExamSetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSet, error) {
	s := &model.ExamSet{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, time_limit_minutes, question_count, set_type, created_at, updated_at
		 FROM exam_sets
		 WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &s.TimeLimitMinutes, &s.QuestionCount, &s.Type, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
