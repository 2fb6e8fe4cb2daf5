package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/repository"
)

// Sequencer fixes the question order of an attempt. The order is shuffled
// once, persisted on the attempt row, and every later resolution returns the
// persisted order unchanged so rejoining connections see an identical
// sequence.
type Sequencer struct {
	attempts *repository.ExamAttemptRepository
	log      zerolog.Logger
}

// NewSequencer creates a new Sequencer.
func NewSequencer(attempts *repository.ExamAttemptRepository, log zerolog.Logger) *Sequencer {
	return &Sequencer{
		attempts: attempts,
		log:      log.With().Str("component", "sequencer").Logger(),
	}
}

// Resolve returns the attempt's question order, shuffling and persisting it
// on first use. Two connections may race to fix the order; the conditional
// write lets exactly one win and the loser re-reads the winner's order.
func (s *Sequencer) Resolve(ctx context.Context, attempt *model.ExamAttempt, questions []model.Question) ([]uuid.UUID, error) {
	if order, err := attempt.QuestionOrder(); err != nil {
		return nil, err
	} else if order != nil {
		return order, nil
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	order := shuffledOrder(ids)
	serialized := model.JoinQuestionOrder(order)

	won, err := s.attempts.SetQuestionOrderOnce(ctx, attempt.ID, serialized)
	if err != nil {
		return nil, fmt.Errorf("persist question order: %w", err)
	}
	if won {
		attempt.OrderQuestionList = &serialized
		s.log.Debug().
			Str("attempt_id", attempt.ID.String()).
			Int("questions", len(order)).
			Msg("question order fixed")
		return order, nil
	}

	// Lost the race: another connection persisted first. Its order is the
	// attempt's order from now on.
	fresh, err := s.attempts.GetByID(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("reload attempt order: %w", err)
	}
	attempt.OrderQuestionList = fresh.OrderQuestionList
	return fresh.QuestionOrder()
}

// shuffledOrder returns a uniformly shuffled copy of ids.
func shuffledOrder(ids []uuid.UUID) []uuid.UUID {
	order := make([]uuid.UUID, len(ids))
	copy(order, ids)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
