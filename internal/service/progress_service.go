package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProgressService is the course progress aggregator. It consumes lecture
// view reports and quiz outcomes, maintains the blended percentage, and
// flips the course completion flag. It never calls into quiz submission
// logic; the attempt and review services push outcomes into it through
// ProgressRecorder.
type ProgressService struct {
	progress    ProgressStore
	catalog     CourseCatalog
	quizzes     QuizStore
	enrollments EnrollmentStore
	rdb         *redis.Client // optional; nil disables progress events
	audit       AuditSink
	log         zerolog.Logger
	now         func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	progress ProgressStore,
	catalog CourseCatalog,
	quizzes QuizStore,
	enrollments EnrollmentStore,
	rdb *redis.Client,
	audit AuditSink,
	log zerolog.Logger,
) *ProgressService {
	return &ProgressService{
		progress:    progress,
		catalog:     catalog,
		quizzes:     quizzes,
		enrollments: enrollments,
		rdb:         rdb,
		audit:       audit,
		log:         log.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

// ProgressView is the student-facing progress payload. Purchased stays
// false when the student is not enrolled, in which case Progress is nil.
type ProgressView struct {
	Purchased bool                  `json:"purchased"`
	Course    *model.Course         `json:"course"`
	Progress  *model.CourseProgress `json:"progress,omitempty"`
}

// Get returns the student's progress in a course, or an empty record when
// nothing has been recorded yet.
func (s *ProgressService) Get(ctx context.Context, studentID, courseID uuid.UUID) (*ProgressView, error) {
	course, err := s.catalog.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return &ProgressView{Purchased: false, Course: course}, nil
	}

	progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &ProgressView{
				Purchased: true,
				Course:    course,
				Progress:  &model.CourseProgress{StudentID: studentID, CourseID: courseID},
			}, nil
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &ProgressView{Purchased: true, Course: course, Progress: progress}, nil
}

// RecordLectureView records watch progress for one lecture. Repeating a
// report for an already-viewed lecture is idempotent unless it is flagged
// as a rewatch, which bumps the rewatch counter without touching
// completion state.
func (s *ProgressService) RecordLectureView(ctx context.Context, studentID, courseID uuid.UUID, req *model.RecordLectureViewRequest) (*model.CourseProgress, error) {
	course, err := s.catalog.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	enrolled, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	if !courseHasLecture(course, req.LectureID) {
		return nil, ErrNotFound
	}

	progress, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lp := progress.LectureByID(req.LectureID)
	if lp == nil {
		progress.Lectures = append(progress.Lectures, model.LectureProgress{LectureID: req.LectureID})
		lp = &progress.Lectures[len(progress.Lectures)-1]
	}

	if req.IsRewatch {
		lp.RewatchCount++
		lp.LastWatchedAt = &now
	} else {
		if req.ProgressValue > lp.ProgressValue {
			lp.ProgressValue = req.ProgressValue
		}
		if lp.ProgressValue >= 1 && !lp.Viewed {
			lp.Viewed = true
			lp.DateViewed = &now
		}
		lp.LastWatchedAt = &now
	}

	if err := s.refresh(ctx, progress, course, now, req.IsRewatch); err != nil {
		return nil, err
	}
	return progress, nil
}

// RecordQuizOutcome folds a graded attempt into the progress record. It
// implements ProgressRecorder.
func (s *ProgressService) RecordQuizOutcome(ctx context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, at time.Time) (*model.CourseProgress, error) {
	return s.applyQuizOutcome(ctx, studentID, courseID, quizID, score, passed, at, true)
}

// RecordQuizReview revises a quiz outcome after manual review without
// counting an extra attempt. It implements ProgressRecorder.
func (s *ProgressService) RecordQuizReview(ctx context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, at time.Time) (*model.CourseProgress, error) {
	return s.applyQuizOutcome(ctx, studentID, courseID, quizID, score, passed, at, false)
}

func (s *ProgressService) applyQuizOutcome(ctx context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, at time.Time, newAttempt bool) (*model.CourseProgress, error) {
	course, err := s.catalog.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}

	progress, err := s.load(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	qp := progress.QuizByID(quizID)
	if qp == nil {
		progress.Quizzes = append(progress.Quizzes, model.QuizProgress{QuizID: quizID})
		qp = &progress.Quizzes[len(progress.Quizzes)-1]
	}

	if newAttempt {
		qp.Attempts++
		qp.LastAttemptAt = &at
	}
	if score > qp.BestScore {
		qp.BestScore = score
	}
	if passed {
		// Latches: one passing attempt completes the quiz for good.
		qp.Completed = true
	}

	if err := s.refresh(ctx, progress, course, at, false); err != nil {
		return nil, err
	}
	return progress, nil
}

// Reset wipes the student's progress record for a course, including the
// completion flag. This is the only path that un-completes a course.
func (s *ProgressService) Reset(ctx context.Context, student Principal, courseID uuid.UUID) (*model.CourseProgress, error) {
	enrolled, err := s.enrollments.Exists(ctx, student.ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	progress, err := s.load(ctx, student.ID, courseID)
	if err != nil {
		return nil, err
	}

	progress.Completed = false
	progress.CompletionDate = nil
	progress.ProgressPercentage = 0
	progress.Lectures = nil
	progress.Quizzes = nil

	if err := s.progress.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	s.publish(ctx, progress)

	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    student.ID,
		ActorName:  student.Name,
		Action:     model.AuditProgressReset,
		TargetType: "course",
		TargetID:   courseID.String(),
	})

	return progress, nil
}

// load fetches the progress record, creating an empty in-memory one when
// none exists yet.
func (s *ProgressService) load(ctx context.Context, studentID, courseID uuid.UUID) (*model.CourseProgress, error) {
	progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.CourseProgress{StudentID: studentID, CourseID: courseID}, nil
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

// refresh recomputes the percentage and completion flag, persists the
// record, and publishes a progress event. Completion is skipped for
// rewatches and for already-completed courses; the flag only moves
// forward here.
func (s *ProgressService) refresh(ctx context.Context, progress *model.CourseProgress, course *model.Course, at time.Time, isRewatch bool) error {
	quizzes, err := s.quizzes.ListByCourse(ctx, course.ID, true)
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}

	progress.ProgressPercentage = progress.CalculatePercentage(course.Lectures, quizzes)

	if !isRewatch && !progress.Completed {
		if progress.AllLecturesCompleted(course.Lectures) && allFinalQuizzesPassed(progress, quizzes) {
			progress.Completed = true
			completionDate := at
			progress.CompletionDate = &completionDate
		}
	}

	if err := s.progress.Upsert(ctx, progress); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	s.publish(ctx, progress)
	return nil
}

// publish pushes the updated record onto the per-student progress channel
// consumed by the websocket stream. Best-effort.
func (s *ProgressService) publish(ctx context.Context, progress *model.CourseProgress) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(progress)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal progress event failed")
		return
	}
	channel := config.CacheKey.ProgressChannel(progress.StudentID.String(), progress.CourseID.String())
	if err := s.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Publish progress event failed")
	}
}

// allFinalQuizzesPassed requires a completed progress entry for every
// active final quiz of the course. A course without final quizzes passes
// vacuously.
func allFinalQuizzesPassed(progress *model.CourseProgress, quizzes []model.Quiz) bool {
	for i := range quizzes {
		if quizzes[i].QuizType != model.QuizTypeFinal {
			continue
		}
		qp := progress.QuizByID(quizzes[i].ID)
		if qp == nil || !qp.Completed {
			return false
		}
	}
	return true
}
