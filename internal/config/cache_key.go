package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptEventsChannel returns the Redis Pub/Sub channel carrying session
// state broadcasts for an attempt. Every connection of the attempt
// subscribes to it.
func (r *CacheKeyStruct) AttemptEventsChannel(attemptID string) string {
	return fmt.Sprintf("attempt:%s:events", attemptID)
}

// ExamSetQuestionsKey returns the cache key for an exam set's sanitized
// question payload.
func (r *CacheKeyStruct) ExamSetQuestionsKey(examSetID string) string {
	return fmt.Sprintf("exam_set:%s:questions", examSetID)
}

var CacheKey = NewCacheKeyStruct()
