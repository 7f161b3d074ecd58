package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
)

// In-memory store fakes. They mirror the repository contract: missing rows
// surface pgx.ErrNoRows, and the grading lock is a conditional transition
// on status.

type fakeQuizStore struct {
	quizzes map[uuid.UUID]*model.Quiz
}

func newFakeQuizStore(quizzes ...*model.Quiz) *fakeQuizStore {
	s := &fakeQuizStore{quizzes: make(map[uuid.UUID]*model.Quiz)}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *fakeQuizStore) Create(_ context.Context, q *model.Quiz) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	s.quizzes[q.ID] = q
	return nil
}

func (s *fakeQuizStore) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, ok := s.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (s *fakeQuizStore) GetOwned(_ context.Context, id, instructorID uuid.UUID) (*model.Quiz, error) {
	q, ok := s.quizzes[id]
	if !ok || q.CreatedBy != instructorID {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (s *fakeQuizStore) Update(_ context.Context, q *model.Quiz) (int64, error) {
	if _, ok := s.quizzes[q.ID]; !ok {
		return 0, nil
	}
	s.quizzes[q.ID] = q
	return 1, nil
}

func (s *fakeQuizStore) Delete(_ context.Context, id, instructorID uuid.UUID) (int64, error) {
	q, ok := s.quizzes[id]
	if !ok || q.CreatedBy != instructorID {
		return 0, nil
	}
	delete(s.quizzes, id)
	return 1, nil
}

func (s *fakeQuizStore) ListByCourse(_ context.Context, courseID uuid.UUID, activeOnly bool) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.CourseID != courseID {
			continue
		}
		if activeOnly && !q.IsActive {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (s *fakeQuizStore) ListByCourseAndOwner(_ context.Context, courseID, instructorID uuid.UUID) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range s.quizzes {
		if q.CourseID == courseID && q.CreatedBy == instructorID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type fakeAttemptStore struct {
	attempts map[uuid.UUID]*model.QuizAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.QuizAttempt)}
}

func (s *fakeAttemptStore) Create(_ context.Context, a *model.QuizAttempt) error {
	a.ID = uuid.New()
	a.AttemptNumber = 1
	for _, other := range s.attempts {
		if other.QuizID == a.QuizID && other.StudentID == a.StudentID && other.AttemptNumber >= a.AttemptNumber {
			a.AttemptNumber = other.AttemptNumber + 1
		}
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now()
	}
	stored := *a
	s.attempts[a.ID] = &stored
	return nil
}

func (s *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	a, ok := s.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) CountByQuizAndStudent(_ context.Context, quizID, studentID uuid.UUID) (int, error) {
	count := 0
	for _, a := range s.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (s *fakeAttemptStore) ListByQuizAndStudent(_ context.Context, quizID, studentID uuid.UUID) ([]model.QuizAttempt, error) {
	var out []model.QuizAttempt
	for _, a := range s.attempts {
		if a.QuizID == quizID && a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) AcquireGradingLock(_ context.Context, id uuid.UUID) (bool, error) {
	a, ok := s.attempts[id]
	if !ok || a.Status == model.AttemptStatusCompleted {
		return false, nil
	}
	a.Status = model.AttemptStatusProcessing
	return true, nil
}

func (s *fakeAttemptStore) ReleaseGradingLock(_ context.Context, id uuid.UUID) error {
	a, ok := s.attempts[id]
	if ok && a.Status == model.AttemptStatusProcessing {
		a.Status = model.AttemptStatusInProgress
	}
	return nil
}

func (s *fakeAttemptStore) CompleteGrading(_ context.Context, a *model.QuizAttempt) error {
	stored, ok := s.attempts[a.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *a
	stored.Status = model.AttemptStatusCompleted
	return nil
}

func (s *fakeAttemptStore) UpdateReview(_ context.Context, a *model.QuizAttempt) error {
	stored, ok := s.attempts[a.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Answers = a.Answers
	stored.Score = a.Score
	stored.PointsEarned = a.PointsEarned
	stored.Passed = a.Passed
	return nil
}

func (s *fakeAttemptStore) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]repository.AttemptResult, error) {
	var out []repository.AttemptResult
	for _, a := range s.attempts {
		if a.QuizID != quizID {
			continue
		}
		out = append(out, repository.AttemptResult{
			AttemptID:     a.ID,
			StudentID:     a.StudentID,
			AttemptNumber: a.AttemptNumber,
			Score:         a.Score,
			Passed:        a.Passed,
			Status:        a.Status,
			NeedsReview:   a.HasPendingReview(),
			StartedAt:     a.StartedAt,
			CompletedAt:   a.CompletedAt,
		})
	}
	return out, nil
}

func (s *fakeAttemptStore) ListPendingReview(_ context.Context, _ uuid.UUID) ([]model.QuizAttempt, error) {
	var out []model.QuizAttempt
	for _, a := range s.attempts {
		if a.Status == model.AttemptStatusCompleted && a.HasPendingReview() {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	records map[string]*model.CourseProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]*model.CourseProgress)}
}

func progressKey(studentID, courseID uuid.UUID) string {
	return studentID.String() + "/" + courseID.String()
}

func (s *fakeProgressStore) GetByStudentAndCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.CourseProgress, error) {
	p, ok := s.records[progressKey(studentID, courseID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProgressStore) Upsert(_ context.Context, p *model.CourseProgress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	s.records[progressKey(p.StudentID, p.CourseID)] = &stored
	return nil
}

type fakeEnrollmentStore struct {
	pairs map[string]bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{pairs: make(map[string]bool)}
}

func (s *fakeEnrollmentStore) enroll(studentID, courseID uuid.UUID) {
	s.pairs[progressKey(studentID, courseID)] = true
}

func (s *fakeEnrollmentStore) Exists(_ context.Context, studentID, courseID uuid.UUID) (bool, error) {
	return s.pairs[progressKey(studentID, courseID)], nil
}

type fakeCatalog struct {
	courses map[uuid.UUID]*model.Course
}

func newFakeCatalog(courses ...*model.Course) *fakeCatalog {
	c := &fakeCatalog{courses: make(map[uuid.UUID]*model.Course)}
	for _, course := range courses {
		c.courses[course.ID] = course
	}
	return c
}

func (c *fakeCatalog) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return course, nil
}

type recordedOutcome struct {
	studentID uuid.UUID
	courseID  uuid.UUID
	quizID    uuid.UUID
	score     int
	passed    bool
}

type fakeRecorder struct {
	outcomes []recordedOutcome
	reviews  []recordedOutcome
}

func (r *fakeRecorder) RecordQuizOutcome(_ context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, _ time.Time) (*model.CourseProgress, error) {
	r.outcomes = append(r.outcomes, recordedOutcome{studentID, courseID, quizID, score, passed})
	return &model.CourseProgress{StudentID: studentID, CourseID: courseID}, nil
}

func (r *fakeRecorder) RecordQuizReview(_ context.Context, studentID, courseID, quizID uuid.UUID, score int, passed bool, _ time.Time) (*model.CourseProgress, error) {
	r.reviews = append(r.reviews, recordedOutcome{studentID, courseID, quizID, score, passed})
	return &model.CourseProgress{StudentID: studentID, CourseID: courseID}, nil
}
