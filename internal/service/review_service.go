package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/scoring"
	"github.com/rs/zerolog"
)

// ReviewService handles instructor grading of manual-review answers
// (broad-text and essay questions) on completed attempts.
type ReviewService struct {
	quizzes  QuizStore
	attempts AttemptStore
	recorder ProgressRecorder
	audit    AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	quizzes QuizStore,
	attempts AttemptStore,
	recorder ProgressRecorder,
	audit AuditSink,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		quizzes:  quizzes,
		attempts: attempts,
		recorder: recorder,
		audit:    audit,
		log:      log.With().Str("component", "review_service").Logger(),
		now:      time.Now,
	}
}

// ReviewAnswer assigns points to one manual-review answer and recomputes
// the attempt aggregates. Once every pending answer has been reviewed,
// passed reflects the full-denominator score against the passing
// threshold, which can flip a provisionally failed attempt to passed.
func (s *ReviewService) ReviewAnswer(ctx context.Context, instructor Principal, attemptID, questionID uuid.UUID, req *model.ReviewAnswerRequest) (*model.QuizAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, ErrNotFound
	}

	quiz, err := s.quizzes.GetByID(ctx, attempt.QuizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.CreatedBy != instructor.ID {
		return nil, ErrAccessDenied
	}

	question := quiz.QuestionByID(questionID)
	if question == nil || !question.Type.NeedsManualReview() {
		return nil, ErrInvalidQuestionType
	}

	answer := attempt.AnswerByQuestion(questionID)
	if answer == nil {
		return nil, ErrNotFound
	}

	if *req.PointsEarned > question.Points {
		return nil, NewValidationError(map[string]string{
			"points_earned": fmt.Sprintf("must not exceed the question's %d points", question.Points),
		})
	}

	now := s.now()
	correct := *req.PointsEarned > 0
	answer.PointsEarned = *req.PointsEarned
	answer.IsCorrect = &correct
	answer.NeedsReview = false
	answer.ReviewedBy = &instructor.ID
	answer.ReviewedAt = &now
	answer.ReviewNotes = req.ReviewNotes

	pointsEarned, score, passed := scoring.Recompute(quiz, attempt.Answers)
	attempt.PointsEarned = pointsEarned
	attempt.Score = score
	attempt.Passed = passed && !attempt.HasPendingReview()

	if err := s.attempts.UpdateReview(ctx, attempt); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	// Progress revision is best-effort; the reviewed attempt is durable.
	if _, err := s.recorder.RecordQuizReview(ctx, attempt.StudentID, attempt.CourseID, attempt.QuizID, attempt.Score, attempt.Passed, now); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attemptID.String()).
			Str("student_id", attempt.StudentID.String()).
			Msg("Record quiz review failed")
	}

	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    instructor.ID,
		ActorName:  instructor.Name,
		Action:     model.AuditAnswerReviewed,
		TargetType: "quiz_attempt",
		TargetID:   attempt.ID.String(),
		TargetName: quiz.Title,
	})

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("question_id", questionID.String()).
		Int("points_earned", *req.PointsEarned).
		Int("score", attempt.Score).
		Bool("passed", attempt.Passed).
		Msg("Answer reviewed")

	return attempt, nil
}
