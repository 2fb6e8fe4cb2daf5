package service_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/service"
)

func makeCache(t *testing.T) (*service.PayloadCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return service.NewPayloadCache(rdb, zerolog.Nop()), mr
}

func TestPayloadCache_RoundTrip(t *testing.T) {
	cache, _ := makeCache(t)
	examSetID := uuid.NewString()

	questions := []model.SanitizedQuestion{
		{ID: uuid.New(), Kind: model.QuestionKindMultipleChoice, Prompt: "pick", ChoiceList: "a,b"},
		{ID: uuid.New(), Kind: model.QuestionKindEssay, Prompt: "write"},
	}

	_, ok := cache.GetQuestions(context.Background(), examSetID)
	require.False(t, ok, "empty cache must miss")

	cache.SetQuestions(context.Background(), examSetID, questions)

	got, ok := cache.GetQuestions(context.Background(), examSetID)
	require.True(t, ok)
	assert.Equal(t, questions, got)
}

func TestPayloadCache_CorruptPayloadIsAMiss(t *testing.T) {
	cache, mr := makeCache(t)
	examSetID := uuid.NewString()

	require.NoError(t, mr.Set("exam_set:"+examSetID+":questions", "{not json"))

	_, ok := cache.GetQuestions(context.Background(), examSetID)
	assert.False(t, ok)
}

func TestPayloadCache_RedisDownIsAMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	cache := service.NewPayloadCache(rdb, zerolog.Nop())
	mr.Close()

	_, ok := cache.GetQuestions(context.Background(), uuid.NewString())
	assert.False(t, ok, "a cache error must degrade to a miss")

	// Writes must not panic either.
	cache.SetQuestions(context.Background(), uuid.NewString(), nil)
}
