package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates the quiz attempt lifecycle states.
// PROCESSING is a short-lived lock held while an attempt is being graded;
// it guarantees at most one concurrent grading operation per attempt.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusProcessing AttemptStatus = "processing"
	AttemptStatusCompleted  AttemptStatus = "completed"
)

// Answer is one submitted answer inside a quiz attempt.
// IsCorrect stays nil for manual-review questions until an instructor
// grades them.
type Answer struct {
	QuestionID   uuid.UUID  `json:"question_id"`
	Value        string     `json:"value"`
	IsCorrect    *bool      `json:"is_correct"`
	PointsEarned int        `json:"points_earned"`
	NeedsReview  bool       `json:"needs_review"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `json:"review_notes,omitempty"`
}

// QuizAttempt is one student's timed instance of answering a quiz.
type QuizAttempt struct {
	ID            uuid.UUID     `json:"id"`
	QuizID        uuid.UUID     `json:"quiz_id"`
	StudentID     uuid.UUID     `json:"student_id"`
	CourseID      uuid.UUID     `json:"course_id"`
	AttemptNumber int           `json:"attempt_number"`
	Answers       []Answer      `json:"answers"`
	Score         int           `json:"score"` // 0–100 percentage
	TotalPoints   int           `json:"total_points"`
	PointsEarned  int           `json:"points_earned"`
	Passed        bool          `json:"passed"`
	Status        AttemptStatus `json:"status"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	TimeSpent     int           `json:"time_spent"` // seconds
}

// AnswerByQuestion finds the answer for a question, or nil.
func (a *QuizAttempt) AnswerByQuestion(questionID uuid.UUID) *Answer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// HasPendingReview reports whether any answer still awaits manual review.
func (a *QuizAttempt) HasPendingReview() bool {
	for i := range a.Answers {
		if a.Answers[i].NeedsReview {
			return true
		}
	}
	return false
}

// AttemptSummary is the per-attempt listing entry shown to students.
type AttemptSummary struct {
	ID            uuid.UUID     `json:"id"`
	AttemptNumber int           `json:"attempt_number"`
	Status        AttemptStatus `json:"status"`
	Score         int           `json:"score"`
	Passed        bool          `json:"passed"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	TimeSpent     int           `json:"time_spent"`
}

// Summary converts the attempt into its listing form.
func (a *QuizAttempt) Summary() AttemptSummary {
	return AttemptSummary{
		ID:            a.ID,
		AttemptNumber: a.AttemptNumber,
		Status:        a.Status,
		Score:         a.Score,
		Passed:        a.Passed,
		StartedAt:     a.StartedAt,
		CompletedAt:   a.CompletedAt,
		TimeSpent:     a.TimeSpent,
	}
}

// AnswerInput is one answer in the submit payload.
type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer"`
}

// SubmitAttemptRequest is the payload for submitting a quiz attempt.
type SubmitAttemptRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,dive"`
}

// ReviewAnswerRequest is the payload for an instructor grading a
// manual-review answer.
type ReviewAnswerRequest struct {
	PointsEarned *int   `json:"points_earned" binding:"required,min=0"`
	ReviewNotes  string `json:"review_notes" binding:"omitempty,max=2000"`
}
