package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizType distinguishes lesson quizzes (tied to one lecture) from final
// quizzes (no lecture, gating overall course completion).
type QuizType string

const (
	QuizTypeLesson QuizType = "lesson"
	QuizTypeFinal  QuizType = "final"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTrueFalse      QuestionType = "true-false"
	QuestionTypeBroadText      QuestionType = "broad-text"
	QuestionTypeShortAnswer    QuestionType = "short-answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// NeedsManualReview reports whether answers of this type must be graded by
// an instructor rather than by string comparison.
func (t QuestionType) NeedsManualReview() bool {
	return t == QuestionTypeBroadText || t == QuestionTypeEssay
}

// Valid reports whether the type is one of the supported kinds.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse,
		QuestionTypeBroadText, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// Question belongs to exactly one quiz and is stored embedded in it.
//
// CorrectAnswer encoding: stringified zero-based option index for
// multiple-choice, literal "true"/"false" for true-false, the expected
// answer string for short-answer. Empty for manual-review types.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
}

// Quiz is a quiz definition authored by an instructor.
type Quiz struct {
	ID              uuid.UUID  `json:"id"`
	CourseID        uuid.UUID  `json:"course_id"`
	LectureID       *uuid.UUID `json:"lecture_id,omitempty"` // nil for final quizzes
	QuizType        QuizType   `json:"quiz_type"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Questions       []Question `json:"questions"`
	PassingScore    int        `json:"passing_score"` // 0–100 percentage
	TimeLimit       *int       `json:"time_limit,omitempty"` // minutes; nil disables enforcement
	AttemptsAllowed int        `json:"attempts_allowed"`     // 0 disables the limit
	IsActive        bool       `json:"is_active"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TotalPoints sums the point value of every question.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// QuestionByID finds an embedded question by its identifier.
func (q *Quiz) QuestionByID(id uuid.UUID) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// QuestionInput is one question in quiz create/update payloads.
// Type-dependent requirements (options, correct answer) are validated in the
// service layer, where violations are reported per field.
type QuestionInput struct {
	Type          string   `json:"type" binding:"required"`
	Prompt        string   `json:"prompt" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"omitempty,dive,min=1"`
	CorrectAnswer string   `json:"correct_answer" binding:"omitempty,max=500"`
	Points        int      `json:"points"`
}

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	CourseID        uuid.UUID       `json:"course_id" binding:"required"`
	LectureID       *uuid.UUID      `json:"lecture_id" binding:"omitempty"`
	QuizType        string          `json:"quiz_type" binding:"required"`
	Title           string          `json:"title" binding:"required,min=3,max=255"`
	Description     string          `json:"description" binding:"omitempty,max=2000"`
	Questions       []QuestionInput `json:"questions" binding:"dive"`
	PassingScore    *int            `json:"passing_score" binding:"omitempty,min=0,max=100"`
	TimeLimit       *int            `json:"time_limit" binding:"omitempty,min=1,max=480"`
	AttemptsAllowed *int            `json:"attempts_allowed" binding:"omitempty,min=0,max=100"`
}

// UpdateQuizRequest is the payload for updating a quiz. All fields optional.
type UpdateQuizRequest struct {
	Title           string           `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	Questions       *[]QuestionInput `json:"questions" binding:"omitempty,dive"`
	PassingScore    *int             `json:"passing_score" binding:"omitempty,min=0,max=100"`
	TimeLimit       *int             `json:"time_limit" binding:"omitempty,min=1,max=480"`
	AttemptsAllowed *int             `json:"attempts_allowed" binding:"omitempty,min=0,max=100"`
	IsActive        *bool            `json:"is_active" binding:"omitempty"`
}

// QuestionForStudent is a question with the correct answer redacted.
type QuestionForStudent struct {
	ID      uuid.UUID    `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
	Points  int          `json:"points"`
}

// QuizForStudent is the student-facing quiz payload (cached in Redis).
// It never carries correct answers.
type QuizForStudent struct {
	ID              uuid.UUID            `json:"id"`
	CourseID        uuid.UUID            `json:"course_id"`
	LectureID       *uuid.UUID           `json:"lecture_id,omitempty"`
	QuizType        QuizType             `json:"quiz_type"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Questions       []QuestionForStudent `json:"questions"`
	PassingScore    int                  `json:"passing_score"`
	TimeLimit       *int                 `json:"time_limit,omitempty"`
	AttemptsAllowed int                  `json:"attempts_allowed"`
}

// ForStudent returns the quiz with every correct answer stripped.
func (q *Quiz) ForStudent() *QuizForStudent {
	questions := make([]QuestionForStudent, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionForStudent{
			ID:      question.ID,
			Type:    question.Type,
			Prompt:  question.Prompt,
			Options: question.Options,
			Points:  question.Points,
		}
	}
	return &QuizForStudent{
		ID:              q.ID,
		CourseID:        q.CourseID,
		LectureID:       q.LectureID,
		QuizType:        q.QuizType,
		Title:           q.Title,
		Description:     q.Description,
		Questions:       questions,
		PassingScore:    q.PassingScore,
		TimeLimit:       q.TimeLimit,
		AttemptsAllowed: q.AttemptsAllowed,
	}
}
