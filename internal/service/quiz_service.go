package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const quizPayloadTTL = 12 * time.Hour

// QuizService is the quiz definition store: instructor-side authoring and
// student-side (redacted) consumption.
type QuizService struct {
	quizzes     QuizStore
	attempts    AttemptStore
	enrollments EnrollmentStore
	catalog     CourseCatalog
	progress    ProgressStore
	rdb         *redis.Client // optional; nil disables payload caching
	audit       AuditSink
	log         zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizzes QuizStore,
	attempts AttemptStore,
	enrollments EnrollmentStore,
	catalog CourseCatalog,
	progress ProgressStore,
	rdb *redis.Client,
	audit AuditSink,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		attempts:    attempts,
		enrollments: enrollments,
		catalog:     catalog,
		progress:    progress,
		rdb:         rdb,
		audit:       audit,
		log:         log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create validates the quiz definition and persists it.
func (s *QuizService) Create(ctx context.Context, instructor Principal, req *model.CreateQuizRequest) (*model.Quiz, error) {
	course, err := s.catalog.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.InstructorID != instructor.ID {
		return nil, ErrAccessDenied
	}

	fields := map[string]string{}

	quizType := model.QuizType(req.QuizType)
	if quizType != model.QuizTypeLesson && quizType != model.QuizTypeFinal {
		fields["quiz_type"] = "must be 'lesson' or 'final'"
	}

	var lectureID *uuid.UUID
	switch quizType {
	case model.QuizTypeLesson:
		if req.LectureID == nil {
			fields["lecture_id"] = "required for lesson quizzes"
		} else if !courseHasLecture(course, *req.LectureID) {
			fields["lecture_id"] = "does not reference a lecture of this course"
		} else {
			lectureID = req.LectureID
		}
	case model.QuizTypeFinal:
		// Final quizzes carry no lecture; a provided one is ignored.
		lectureID = nil
	}

	if len(req.Questions) == 0 {
		fields["questions"] = "at least one question is required"
	}
	questions := buildQuestions(req.Questions, fields)

	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	quiz := &model.Quiz{
		CourseID:        req.CourseID,
		LectureID:       lectureID,
		QuizType:        quizType,
		Title:           req.Title,
		Description:     req.Description,
		Questions:       questions,
		PassingScore:    70,
		AttemptsAllowed: 1,
		TimeLimit:       req.TimeLimit,
		IsActive:        true,
		CreatedBy:       instructor.ID,
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *req.AttemptsAllowed
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    instructor.ID,
		ActorName:  instructor.Name,
		Action:     model.AuditQuizCreated,
		TargetType: "quiz",
		TargetID:   quiz.ID.String(),
		TargetName: quiz.Title,
	})

	return quiz, nil
}

// Update mutates a quiz owned by the instructor and invalidates its cached
// student payload.
func (s *QuizService) Update(ctx context.Context, instructorID, quizID uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetOwned(ctx, quizID, instructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *req.AttemptsAllowed
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
	if req.Questions != nil {
		fields := map[string]string{}
		if len(*req.Questions) == 0 {
			fields["questions"] = "at least one question is required"
		}
		questions := buildQuestions(*req.Questions, fields)
		if len(fields) > 0 {
			return nil, NewValidationError(fields)
		}
		quiz.Questions = questions
	}

	rows, err := s.quizzes.Update(ctx, quiz)
	if err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	s.invalidatePayloadCache(ctx, quizID)
	return quiz, nil
}

// Delete removes a quiz owned by the instructor.
func (s *QuizService) Delete(ctx context.Context, instructor Principal, quizID uuid.UUID) error {
	rows, err := s.quizzes.Delete(ctx, quizID, instructor.ID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.invalidatePayloadCache(ctx, quizID)
	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    instructor.ID,
		ActorName:  instructor.Name,
		Action:     model.AuditQuizDeleted,
		TargetType: "quiz",
		TargetID:   quizID.String(),
	})
	return nil
}

// GetForInstructor returns the full definition plus all students' results.
func (s *QuizService) GetForInstructor(ctx context.Context, instructorID, quizID uuid.UUID) (*model.Quiz, []repository.AttemptResult, error) {
	quiz, err := s.quizzes.GetOwned(ctx, quizID, instructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get quiz: %w", err)
	}

	results, err := s.attempts.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("list results: %w", err)
	}
	return quiz, results, nil
}

// GetForStudent returns the redacted quiz payload and the student's attempt
// history. Correct answers never cross this boundary.
func (s *QuizService) GetForStudent(ctx context.Context, studentID, quizID uuid.UUID) (*model.QuizForStudent, []model.AttemptSummary, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsActive {
		return nil, nil, ErrQuizInactive
	}

	if err := s.checkStudentAccess(ctx, studentID, quiz); err != nil {
		return nil, nil, err
	}

	payload := s.cachedPayload(ctx, quiz)

	attempts, err := s.attempts.ListByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("list attempts: %w", err)
	}
	summaries := make([]model.AttemptSummary, len(attempts))
	for i := range attempts {
		summaries[i] = attempts[i].Summary()
	}

	return payload, summaries, nil
}

// StudentQuizEntry is a quiz listing entry with the student's attempts.
type StudentQuizEntry struct {
	Quiz     *model.QuizForStudent  `json:"quiz"`
	Attempts []model.AttemptSummary `json:"attempts"`
}

// ListForCourseStudent lists a course's active quizzes visible to the
// student: lesson quizzes are hidden until their lecture is fully watched,
// final quizzes are always listed for enrolled students.
func (s *QuizService) ListForCourseStudent(ctx context.Context, studentID, courseID uuid.UUID) ([]StudentQuizEntry, error) {
	enrolled, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	quizzes, err := s.quizzes.ListByCourse(ctx, courseID, true)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	var entries []StudentQuizEntry
	for i := range quizzes {
		quiz := &quizzes[i]
		if quiz.LectureID != nil {
			if progress == nil || !progress.IsLectureCompleted(*quiz.LectureID) {
				continue
			}
		}

		attempts, err := s.attempts.ListByQuizAndStudent(ctx, quiz.ID, studentID)
		if err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		summaries := make([]model.AttemptSummary, len(attempts))
		for j := range attempts {
			summaries[j] = attempts[j].Summary()
		}
		entries = append(entries, StudentQuizEntry{Quiz: quiz.ForStudent(), Attempts: summaries})
	}
	return entries, nil
}

// ListForCourseInstructor lists an instructor's quizzes for one course,
// full definitions included.
func (s *QuizService) ListForCourseInstructor(ctx context.Context, instructorID, courseID uuid.UUID) ([]model.Quiz, error) {
	quizzes, err := s.quizzes.ListByCourseAndOwner(ctx, courseID, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// ListUnreviewed retrieves attempts awaiting manual review across the
// instructor's quizzes.
func (s *QuizService) ListUnreviewed(ctx context.Context, instructorID uuid.UUID) ([]model.QuizAttempt, error) {
	attempts, err := s.attempts.ListPendingReview(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", err)
	}
	return attempts, nil
}

// checkStudentAccess verifies enrollment and, for lesson quizzes, the
// prerequisite lecture.
func (s *QuizService) checkStudentAccess(ctx context.Context, studentID uuid.UUID, quiz *model.Quiz) error {
	enrolled, err := s.enrollments.Exists(ctx, studentID, quiz.CourseID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if quiz.LectureID != nil {
		progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, quiz.CourseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPrerequisiteNotMet
			}
			return fmt.Errorf("get progress: %w", err)
		}
		if !progress.IsLectureCompleted(*quiz.LectureID) {
			return ErrPrerequisiteNotMet
		}
	}
	return nil
}

// cachedPayload reads the redacted payload from Redis, falling back to (and
// refreshing) the definition on a miss. Caching is best-effort.
func (s *QuizService) cachedPayload(ctx context.Context, quiz *model.Quiz) *model.QuizForStudent {
	if s.rdb == nil {
		return quiz.ForStudent()
	}

	key := config.CacheKey.QuizPayloadKey(quiz.ID.String())
	if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
		cached := &model.QuizForStudent{}
		if err := json.Unmarshal([]byte(raw), cached); err == nil {
			return cached
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Payload cache read failed")
	}

	payload := quiz.ForStudent()
	if raw, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, key, raw, quizPayloadTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Payload cache write failed")
		}
	}
	return payload
}

func (s *QuizService) invalidatePayloadCache(ctx context.Context, quizID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache invalidation failed")
	}
}

func courseHasLecture(course *model.Course, lectureID uuid.UUID) bool {
	for i := range course.Lectures {
		if course.Lectures[i].ID == lectureID {
			return true
		}
	}
	return false
}

// buildQuestions validates question inputs and assigns identifiers,
// accumulating violations into fields keyed by position.
func buildQuestions(inputs []model.QuestionInput, fields map[string]string) []model.Question {
	questions := make([]model.Question, 0, len(inputs))

	for i, in := range inputs {
		key := func(name string) string { return fmt.Sprintf("questions[%d].%s", i, name) }

		qType := model.QuestionType(in.Type)
		if !qType.Valid() {
			fields[key("type")] = "must be 'multiple-choice', 'true-false', 'broad-text', 'short-answer', or 'essay'"
			continue
		}

		if in.Points < 1 {
			fields[key("points")] = "must be at least 1"
		}

		switch qType {
		case model.QuestionTypeMultipleChoice:
			if len(in.Options) < 2 {
				fields[key("options")] = "at least 2 options are required"
			}
			if in.CorrectAnswer == "" {
				fields[key("correct_answer")] = "required for multiple-choice questions"
			} else if idx, err := strconv.Atoi(in.CorrectAnswer); err != nil || idx < 0 || idx >= len(in.Options) {
				fields[key("correct_answer")] = "must be the zero-based index of an option"
			}
		case model.QuestionTypeTrueFalse:
			if in.CorrectAnswer != "true" && in.CorrectAnswer != "false" {
				fields[key("correct_answer")] = "must be 'true' or 'false'"
			}
		case model.QuestionTypeShortAnswer:
			if in.CorrectAnswer == "" {
				fields[key("correct_answer")] = "required for short-answer questions"
			}
		}

		questions = append(questions, model.Question{
			ID:            uuid.New(),
			Type:          qType,
			Prompt:        in.Prompt,
			Options:       in.Options,
			CorrectAnswer: in.CorrectAnswer,
			Points:        in.Points,
		})
	}

	return questions
}
