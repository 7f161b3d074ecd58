package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
)

// The stores below are the narrow persistence surfaces the quiz lifecycle
// services depend on. The pgx repositories satisfy them; tests substitute
// in-memory fakes. Store methods surface pgx.ErrNoRows for missing rows —
// services translate that to ErrNotFound before it crosses the boundary.

// QuizStore persists quiz definitions.
type QuizStore interface {
	Create(ctx context.Context, q *model.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	GetOwned(ctx context.Context, id, instructorID uuid.UUID) (*model.Quiz, error)
	Update(ctx context.Context, q *model.Quiz) (int64, error)
	Delete(ctx context.Context, id, instructorID uuid.UUID) (int64, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, activeOnly bool) ([]model.Quiz, error)
	ListByCourseAndOwner(ctx context.Context, courseID, instructorID uuid.UUID) ([]model.Quiz, error)
}

// AttemptStore persists quiz attempts, including the grading lock.
type AttemptStore interface {
	Create(ctx context.Context, a *model.QuizAttempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error)
	CountByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (int, error)
	ListByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) ([]model.QuizAttempt, error)
	AcquireGradingLock(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseGradingLock(ctx context.Context, id uuid.UUID) error
	CompleteGrading(ctx context.Context, a *model.QuizAttempt) error
	UpdateReview(ctx context.Context, a *model.QuizAttempt) error
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]repository.AttemptResult, error)
	ListPendingReview(ctx context.Context, instructorID uuid.UUID) ([]model.QuizAttempt, error)
}

// ProgressStore persists course progress records.
type ProgressStore interface {
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.CourseProgress, error)
	Upsert(ctx context.Context, p *model.CourseProgress) error
}

// EnrollmentStore answers the course membership predicate.
type EnrollmentStore interface {
	Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

// CourseCatalog supplies course structure (the ordered lecture list).
type CourseCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// ProgressRecorder is the narrow interface through which the attempt and
// review services notify the progress aggregator. It points strictly
// downward in the dependency graph: the aggregator never calls back into
// submission logic.
type ProgressRecorder interface {
	RecordQuizOutcome(ctx context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, at time.Time) (*model.CourseProgress, error)
	// RecordQuizReview revises a previously recorded outcome after manual
	// review. It updates best score and completion without counting a new
	// attempt.
	RecordQuizReview(ctx context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, at time.Time) (*model.CourseProgress, error)
}
