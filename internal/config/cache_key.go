package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a quiz's redacted student payload
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// CourseQuizListKey returns the cache key for a course's active quiz list
func (r *CacheKeyStruct) CourseQuizListKey(courseID string) string {
	return fmt.Sprintf("course:%s:quizzes", courseID)
}

// ProgressChannel returns the Redis PubSub channel for a student's progress
// updates in a course
func (r *CacheKeyStruct) ProgressChannel(studentID, courseID string) string {
	return fmt.Sprintf("student:%s:course:%s:progress", studentID, courseID)
}

var CacheKey = NewCacheKeyStruct()
