package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/config"
	"github.com/codeladder/exam-backend/internal/model"
)

// questionCacheTTL bounds how stale a cached question payload may get after
// an exam set is edited.
const questionCacheTTL = 10 * time.Minute

// PayloadCache caches an exam set's sanitized question payload in Redis so
// repeated joins don't rebuild it from Postgres. A cache miss or Redis error
// is never fatal; callers fall back to the repository.
type PayloadCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewPayloadCache creates a new PayloadCache.
func NewPayloadCache(rdb *redis.Client, log zerolog.Logger) *PayloadCache {
	return &PayloadCache{
		rdb: rdb,
		log: log.With().Str("component", "payload_cache").Logger(),
	}
}

// GetQuestions returns the cached sanitized questions of an exam set, or
// (nil, false) on a miss.
func (c *PayloadCache) GetQuestions(ctx context.Context, examSetID string) ([]model.SanitizedQuestion, bool) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.ExamSetQuestionsKey(examSetID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("exam_set_id", examSetID).Msg("question cache read failed")
		}
		return nil, false
	}
	var questions []model.SanitizedQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		c.log.Warn().Err(err).Str("exam_set_id", examSetID).Msg("question cache payload corrupt")
		return nil, false
	}
	return questions, true
}

// SetQuestions stores the sanitized questions of an exam set.
func (c *PayloadCache) SetQuestions(ctx context.Context, examSetID string, questions []model.SanitizedQuestion) {
	raw, err := json.Marshal(questions)
	if err != nil {
		c.log.Warn().Err(err).Str("exam_set_id", examSetID).Msg("question cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.ExamSetQuestionsKey(examSetID), raw, questionCacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("exam_set_id", examSetID).Msg("question cache write failed")
	}
}
