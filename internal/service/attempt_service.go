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

// AttemptService owns the quiz attempt lifecycle: starting attempts,
// grading submissions, and exposing results. An attempt moves
// in_progress -> processing -> completed; the processing state is the
// grading lock that makes double submission lose cleanly.
type AttemptService struct {
	quizzes     QuizStore
	attempts    AttemptStore
	enrollments EnrollmentStore
	progress    ProgressStore
	recorder    ProgressRecorder
	audit       AuditSink
	log         zerolog.Logger
	now         func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	quizzes QuizStore,
	attempts AttemptStore,
	enrollments EnrollmentStore,
	progress ProgressStore,
	recorder ProgressRecorder,
	audit AuditSink,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		quizzes:     quizzes,
		attempts:    attempts,
		enrollments: enrollments,
		progress:    progress,
		recorder:    recorder,
		audit:       audit,
		log:         log.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

// Start opens a new attempt after checking the quiz is active, the student
// is enrolled, the prerequisite lecture (for lesson quizzes) is watched,
// and the attempt limit is not exhausted. The attempt number is assigned
// by the store, so concurrent starts never collide.
func (s *AttemptService) Start(ctx context.Context, studentID, quizID uuid.UUID) (*model.QuizAttempt, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsActive {
		return nil, ErrQuizInactive
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if quiz.LectureID != nil {
		progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, quiz.CourseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrPrerequisiteNotMet
			}
			return nil, fmt.Errorf("get progress: %w", err)
		}
		if !progress.IsLectureCompleted(*quiz.LectureID) {
			return nil, ErrPrerequisiteNotMet
		}
	}

	if quiz.AttemptsAllowed > 0 {
		count, err := s.attempts.CountByQuizAndStudent(ctx, quizID, studentID)
		if err != nil {
			return nil, fmt.Errorf("count attempts: %w", err)
		}
		if count >= quiz.AttemptsAllowed {
			return nil, ErrAttemptLimitExceeded
		}
	}

	attempt := &model.QuizAttempt{
		QuizID:      quizID,
		StudentID:   studentID,
		CourseID:    quiz.CourseID,
		TotalPoints: quiz.TotalPoints(),
		Status:      model.AttemptStatusInProgress,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("student_id", studentID.String()).
		Int("attempt_number", attempt.AttemptNumber).
		Msg("Attempt started")

	return attempt, nil
}

// Submit grades an in-progress attempt. The grading lock is acquired with a
// single conditional update; the losing side of a double submit gets
// ErrAlreadySubmitted and the stored result stays whatever the winner wrote.
// A submission past the time limit releases the lock and is rejected.
func (s *AttemptService) Submit(ctx context.Context, studentID, attemptID uuid.UUID, req *model.SubmitAttemptRequest) (*model.QuizAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrAccessDenied
	}
	if attempt.Status == model.AttemptStatusCompleted {
		return nil, ErrAlreadySubmitted
	}

	quiz, err := s.quizzes.GetByID(ctx, attempt.QuizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	locked, err := s.attempts.AcquireGradingLock(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("acquire grading lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadySubmitted
	}

	now := s.now()
	elapsed := now.Sub(attempt.StartedAt)

	if quiz.TimeLimit != nil {
		limit := time.Duration(*quiz.TimeLimit) * time.Minute
		if elapsed > limit {
			if relErr := s.attempts.ReleaseGradingLock(ctx, attemptID); relErr != nil {
				s.log.Error().Err(relErr).Str("attempt_id", attemptID.String()).Msg("Release grading lock failed")
			}
			return nil, ErrTimeLimitExceeded
		}
	}

	result := scoring.Grade(quiz, req.Answers)

	attempt.Answers = result.Answers
	attempt.Score = result.Score
	attempt.PointsEarned = result.PointsEarned
	attempt.TotalPoints = result.TotalPoints
	attempt.Passed = result.Passed
	attempt.Status = model.AttemptStatusCompleted
	attempt.CompletedAt = &now
	attempt.TimeSpent = int(elapsed.Seconds())

	if err := s.attempts.CompleteGrading(ctx, attempt); err != nil {
		return nil, fmt.Errorf("complete grading: %w", err)
	}

	// Progress aggregation is best-effort: the graded attempt is already
	// durable, so a failure here must not fail the submission.
	if _, err := s.recorder.RecordQuizOutcome(ctx, studentID, attempt.CourseID, attempt.QuizID, attempt.Score, attempt.Passed, now); err != nil {
		s.log.Error().Err(err).
			Str("attempt_id", attemptID.String()).
			Str("student_id", studentID.String()).
			Msg("Record quiz outcome failed")
	}

	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    studentID,
		Action:     model.AuditAttemptGraded,
		TargetType: "quiz_attempt",
		TargetID:   attempt.ID.String(),
		TargetName: quiz.Title,
	})

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("score", attempt.Score).
		Bool("passed", attempt.Passed).
		Bool("pending_review", result.PendingReview).
		Msg("Attempt graded")

	return attempt, nil
}

// AnswerDetail is a graded answer joined with its question. The correct
// answer is disclosed here because results only cover completed attempts.
type AnswerDetail struct {
	model.Answer
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Points        int      `json:"points"`
}

// AttemptDetail is the full results payload for one completed attempt:
// the attempt itself, its answers joined with question text, and the
// student's attempt history on the quiz.
type AttemptDetail struct {
	Attempt      *model.QuizAttempt     `json:"attempt"`
	QuizTitle    string                 `json:"quiz_title"`
	PassingScore int                    `json:"passing_score"`
	Answers      []AnswerDetail         `json:"answers"`
	History      []model.AttemptSummary `json:"history"`
}

// Results returns a completed attempt to its owner, with answers joined
// against the quiz definition and the full attempt history.
func (s *AttemptService) Results(ctx context.Context, studentID, attemptID uuid.UUID) (*AttemptDetail, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrAccessDenied
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

	answers := make([]AnswerDetail, 0, len(attempt.Answers))
	for _, answer := range attempt.Answers {
		detail := AnswerDetail{Answer: answer}
		if question := quiz.QuestionByID(answer.QuestionID); question != nil {
			detail.Prompt = question.Prompt
			detail.Options = question.Options
			detail.CorrectAnswer = question.CorrectAnswer
			detail.Points = question.Points
		}
		answers = append(answers, detail)
	}

	history, err := s.attempts.ListByQuizAndStudent(ctx, attempt.QuizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	summaries := make([]model.AttemptSummary, len(history))
	for i := range history {
		summaries[i] = history[i].Summary()
	}

	return &AttemptDetail{
		Attempt:      attempt,
		QuizTitle:    quiz.Title,
		PassingScore: quiz.PassingScore,
		Answers:      answers,
		History:      summaries,
	}, nil
}
