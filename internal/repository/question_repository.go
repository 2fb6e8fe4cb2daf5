package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeladder/exam-backend/internal/model"
)

const questionColumns = `id, exam_set_id, kind, prompt,
	choice_list, correct_choice_index,
	init_code, test_case_list, language, harness_template,
	blank_answers, case_sensitive, order_num`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a single question with all kind-specific fields.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
	).Scan(
		&q.ID, &q.ExamSetID, &q.Kind, &q.Prompt,
		&q.ChoiceList, &q.CorrectChoiceIndex,
		&q.InitCode, &q.TestCaseList, &q.Language, &q.HarnessTemplate,
		&q.BlankAnswers, &q.CaseSensitive, &q.OrderNum,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByExamSet retrieves all questions of an exam set, ordered by order_num.
func (r *QuestionRepository) ListByExamSet(ctx context.Context, examSetID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE exam_set_id = $1
		 ORDER BY order_num`, examSetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.ExamSetID, &q.Kind, &q.Prompt,
			&q.ChoiceList, &q.CorrectChoiceIndex,
			&q.InitCode, &q.TestCaseList, &q.Language, &q.HarnessTemplate,
			&q.BlankAnswers, &q.CaseSensitive, &q.OrderNum,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
