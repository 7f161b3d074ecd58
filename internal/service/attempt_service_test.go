package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/rs/zerolog"
)

type attemptFixture struct {
	svc         *AttemptService
	quizzes     *fakeQuizStore
	attempts    *fakeAttemptStore
	enrollments *fakeEnrollmentStore
	progress    *fakeProgressStore
	recorder    *fakeRecorder
	quiz        *model.Quiz
	studentID   uuid.UUID
}

func newAttemptFixture(t *testing.T) *attemptFixture {
	t.Helper()

	courseID := uuid.New()
	studentID := uuid.New()

	quiz := &model.Quiz{
		ID:       uuid.New(),
		CourseID: courseID,
		QuizType: model.QuizTypeFinal,
		Title:    "Final Assessment",
		Questions: []model.Question{
			{ID: uuid.New(), Type: model.QuestionTypeMultipleChoice, Prompt: "Q1",
				Options: []string{"a", "b"}, CorrectAnswer: "0", Points: 2},
			{ID: uuid.New(), Type: model.QuestionTypeTrueFalse, Prompt: "Q2",
				CorrectAnswer: "true", Points: 2},
		},
		PassingScore:    70,
		AttemptsAllowed: 2,
		IsActive:        true,
		CreatedBy:       uuid.New(),
	}

	quizzes := newFakeQuizStore(quiz)
	attempts := newFakeAttemptStore()
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll(studentID, courseID)
	progress := newFakeProgressStore()
	recorder := &fakeRecorder{}

	svc := NewAttemptService(quizzes, attempts, enrollments, progress, recorder, NopAuditSink{}, zerolog.Nop())

	return &attemptFixture{
		svc:         svc,
		quizzes:     quizzes,
		attempts:    attempts,
		enrollments: enrollments,
		progress:    progress,
		recorder:    recorder,
		quiz:        quiz,
		studentID:   studentID,
	}
}

func correctAnswers(quiz *model.Quiz) *model.SubmitAttemptRequest {
	req := &model.SubmitAttemptRequest{}
	for _, q := range quiz.Questions {
		req.Answers = append(req.Answers, model.AnswerInput{QuestionID: q.ID, Answer: q.CorrectAnswer})
	}
	return req
}

func TestStartAssignsSequentialAttemptNumbers(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	if first.AttemptNumber != 1 || second.AttemptNumber != 2 {
		t.Fatalf("attempt numbers = %d, %d; want 1, 2", first.AttemptNumber, second.AttemptNumber)
	}
	if first.Status != model.AttemptStatusInProgress {
		t.Fatalf("status = %s; want in_progress", first.Status)
	}
}

func TestStartEnforcesAttemptLimit(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID); err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
	}

	_, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if !errors.Is(err, ErrAttemptLimitExceeded) {
		t.Fatalf("err = %v; want ErrAttemptLimitExceeded", err)
	}
}

func TestStartWithZeroLimitIsUnlimited(t *testing.T) {
	fx := newAttemptFixture(t)
	fx.quiz.AttemptsAllowed = 0
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID); err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
	}
}

func TestStartRejectsInactiveQuiz(t *testing.T) {
	fx := newAttemptFixture(t)
	fx.quiz.IsActive = false

	_, err := fx.svc.Start(context.Background(), fx.studentID, fx.quiz.ID)
	if !errors.Is(err, ErrQuizInactive) {
		t.Fatalf("err = %v; want ErrQuizInactive", err)
	}
}

func TestStartRequiresEnrollment(t *testing.T) {
	fx := newAttemptFixture(t)

	_, err := fx.svc.Start(context.Background(), uuid.New(), fx.quiz.ID)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err = %v; want ErrNotEnrolled", err)
	}
}

func TestStartLessonQuizRequiresLectureCompletion(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	lectureID := uuid.New()
	fx.quiz.QuizType = model.QuizTypeLesson
	fx.quiz.LectureID = &lectureID

	_, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if !errors.Is(err, ErrPrerequisiteNotMet) {
		t.Fatalf("err without progress = %v; want ErrPrerequisiteNotMet", err)
	}

	now := time.Now()
	fx.progress.Upsert(ctx, &model.CourseProgress{
		StudentID: fx.studentID,
		CourseID:  fx.quiz.CourseID,
		Lectures: []model.LectureProgress{
			{LectureID: lectureID, Viewed: true, ProgressValue: 1, DateViewed: &now},
		},
	})

	if _, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID); err != nil {
		t.Fatalf("start after lecture completed: %v", err)
	}
}

func TestSubmitGradesAndRecordsProgress(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	graded, err := fx.svc.Submit(ctx, fx.studentID, attempt.ID, correctAnswers(fx.quiz))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if graded.Score != 100 || !graded.Passed {
		t.Fatalf("score = %d passed = %t; want 100 true", graded.Score, graded.Passed)
	}
	if graded.Status != model.AttemptStatusCompleted {
		t.Fatalf("status = %s; want completed", graded.Status)
	}
	if graded.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}

	if len(fx.recorder.outcomes) != 1 {
		t.Fatalf("recorded outcomes = %d; want 1", len(fx.recorder.outcomes))
	}
	out := fx.recorder.outcomes[0]
	if out.quizID != fx.quiz.ID || out.score != 100 || !out.passed {
		t.Fatalf("recorded outcome = %+v", out)
	}
}

func TestSubmitTwiceKeepsFirstResult(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := fx.svc.Submit(ctx, fx.studentID, attempt.ID, correctAnswers(fx.quiz))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Second submission with wrong answers must lose and leave the stored
	// result untouched.
	wrong := &model.SubmitAttemptRequest{
		Answers: []model.AnswerInput{{QuestionID: fx.quiz.Questions[0].ID, Answer: "nope"}},
	}
	_, err = fx.svc.Submit(ctx, fx.studentID, attempt.ID, wrong)
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit err = %v; want ErrAlreadySubmitted", err)
	}

	stored, err := fx.attempts.GetByID(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Score != first.Score || !stored.Passed {
		t.Fatalf("stored score = %d passed = %t; first result was overwritten", stored.Score, stored.Passed)
	}
}

func TestSubmitPastTimeLimitReleasesLock(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	limit := 30
	fx.quiz.TimeLimit = &limit

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	fx.svc.now = func() time.Time { return attempt.StartedAt.Add(31 * time.Minute) }

	_, err = fx.svc.Submit(ctx, fx.studentID, attempt.ID, correctAnswers(fx.quiz))
	if !errors.Is(err, ErrTimeLimitExceeded) {
		t.Fatalf("err = %v; want ErrTimeLimitExceeded", err)
	}

	stored, err := fx.attempts.GetByID(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.Status != model.AttemptStatusInProgress {
		t.Fatalf("status after rejection = %s; want in_progress", stored.Status)
	}
}

func TestSubmitByOtherStudentDenied(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = fx.svc.Submit(ctx, uuid.New(), attempt.ID, correctAnswers(fx.quiz))
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v; want ErrAccessDenied", err)
	}
}

func TestSubmitManualReviewProvisionallyFails(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	essayID := uuid.New()
	fx.quiz.Questions = append(fx.quiz.Questions, model.Question{
		ID: essayID, Type: model.QuestionTypeEssay, Prompt: "Explain", Points: 4,
	})

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	req := correctAnswers(fx.quiz)
	req.Answers[len(req.Answers)-1].Answer = "a long essay"

	graded, err := fx.svc.Submit(ctx, fx.studentID, attempt.ID, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Auto-gradable portion is perfect but the essay is pending, so the
	// attempt cannot pass yet.
	if graded.Score != 100 {
		t.Fatalf("score = %d; want 100 over auto-gradable points", graded.Score)
	}
	if graded.Passed {
		t.Fatal("passed = true; want provisional fail while review pending")
	}
	if !graded.HasPendingReview() {
		t.Fatal("expected pending review answers")
	}
}

func TestResultsOnlyForCompletedOwnAttempts(t *testing.T) {
	fx := newAttemptFixture(t)
	ctx := context.Background()

	attempt, err := fx.svc.Start(ctx, fx.studentID, fx.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := fx.svc.Results(ctx, fx.studentID, attempt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("results before completion err = %v; want ErrNotFound", err)
	}
	if _, err := fx.svc.Results(ctx, uuid.New(), attempt.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("results for stranger err = %v; want ErrAccessDenied", err)
	}

	if _, err := fx.svc.Submit(ctx, fx.studentID, attempt.ID, correctAnswers(fx.quiz)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := fx.svc.Results(ctx, fx.studentID, attempt.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if got.Attempt.Score != 100 {
		t.Fatalf("score = %d; want 100", got.Attempt.Score)
	}
	if len(got.Answers) != len(fx.quiz.Questions) {
		t.Fatalf("answer details = %d; want %d", len(got.Answers), len(fx.quiz.Questions))
	}
	for _, a := range got.Answers {
		if a.Prompt == "" || a.CorrectAnswer == "" {
			t.Fatalf("answer detail %+v missing question join", a)
		}
	}
	if len(got.History) != 1 {
		t.Fatalf("history = %d; want 1", len(got.History))
	}
}
