package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/scoring"
	"github.com/rs/zerolog"
)

type reviewFixture struct {
	svc        *ReviewService
	attempts   *fakeAttemptStore
	recorder   *fakeRecorder
	quiz       *model.Quiz
	attempt    *model.QuizAttempt
	instructor Principal
	mcID       uuid.UUID
	essayID    uuid.UUID
}

// newReviewFixture builds a completed attempt on a quiz with a 2-point
// multiple-choice question (answered correctly) and a 3-point essay
// awaiting review. Passing score is 70.
func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	instructorID := uuid.New()
	mcID := uuid.New()
	essayID := uuid.New()

	quiz := &model.Quiz{
		ID:       uuid.New(),
		CourseID: uuid.New(),
		QuizType: model.QuizTypeFinal,
		Title:    "Essay Final",
		Questions: []model.Question{
			{ID: mcID, Type: model.QuestionTypeMultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: "0", Points: 2},
			{ID: essayID, Type: model.QuestionTypeEssay, Prompt: "Explain", Points: 3},
		},
		PassingScore: 70,
		IsActive:     true,
		CreatedBy:    instructorID,
	}

	result := scoring.Grade(quiz, []model.AnswerInput{
		{QuestionID: mcID, Answer: "0"},
		{QuestionID: essayID, Answer: "a long essay"},
	})

	now := time.Now()
	attempt := &model.QuizAttempt{
		QuizID:       quiz.ID,
		StudentID:    uuid.New(),
		CourseID:     quiz.CourseID,
		Answers:      result.Answers,
		Score:        result.Score,
		TotalPoints:  result.TotalPoints,
		PointsEarned: result.PointsEarned,
		Passed:       result.Passed,
		Status:       model.AttemptStatusCompleted,
		StartedAt:    now.Add(-10 * time.Minute),
		CompletedAt:  &now,
	}

	attempts := newFakeAttemptStore()
	if err := attempts.Create(context.Background(), attempt); err != nil {
		t.Fatalf("seed attempt: %v", err)
	}

	recorder := &fakeRecorder{}
	svc := NewReviewService(newFakeQuizStore(quiz), attempts, recorder, NopAuditSink{}, zerolog.Nop())

	return &reviewFixture{
		svc:        svc,
		attempts:   attempts,
		recorder:   recorder,
		quiz:       quiz,
		attempt:    attempt,
		instructor: Principal{ID: instructorID, Name: "Prof", Role: model.RoleInstructor},
		mcID:       mcID,
		essayID:    essayID,
	}
}

func points(n int) *int { return &n }

func TestReviewCrossingThresholdFlipsPassed(t *testing.T) {
	fx := newReviewFixture(t)

	got, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(3), ReviewNotes: "solid"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	// 5 of 5 points over the full denominator.
	if got.Score != 100 || !got.Passed {
		t.Fatalf("score = %d passed = %t; want 100 true", got.Score, got.Passed)
	}
	if got.HasPendingReview() {
		t.Fatal("answer still flagged for review")
	}

	answer := got.AnswerByQuestion(fx.essayID)
	if answer.PointsEarned != 3 || answer.IsCorrect == nil || !*answer.IsCorrect {
		t.Fatalf("answer = %+v; review result not applied", answer)
	}
	if answer.ReviewedBy == nil || *answer.ReviewedBy != fx.instructor.ID {
		t.Fatal("reviewer not recorded")
	}
	if answer.ReviewNotes != "solid" {
		t.Fatalf("review_notes = %q", answer.ReviewNotes)
	}

	if len(fx.recorder.reviews) != 1 {
		t.Fatalf("recorded reviews = %d; want 1", len(fx.recorder.reviews))
	}
	if rec := fx.recorder.reviews[0]; rec.score != 100 || !rec.passed {
		t.Fatalf("recorded review = %+v", rec)
	}
	if len(fx.recorder.outcomes) != 0 {
		t.Fatal("review must not record a new attempt outcome")
	}
}

func TestReviewUsesFullPointDenominator(t *testing.T) {
	fx := newReviewFixture(t)

	// 2 auto + 1 review = 3 of 5 points → 60, below the 70 threshold.
	got, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(1)})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	if got.Score != 60 || got.Passed {
		t.Fatalf("score = %d passed = %t; want 60 false", got.Score, got.Passed)
	}
}

func TestReviewZeroPointsMarksIncorrect(t *testing.T) {
	fx := newReviewFixture(t)

	got, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(0)})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	answer := got.AnswerByQuestion(fx.essayID)
	if answer.IsCorrect == nil || *answer.IsCorrect {
		t.Fatal("zero-point review must mark the answer incorrect")
	}
	if got.Score != 40 {
		t.Fatalf("score = %d; want 40 (2 of 5 points)", got.Score)
	}
}

func TestReviewRejectsExcessPoints(t *testing.T) {
	fx := newReviewFixture(t)

	_, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(4)})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
	if _, ok := vErr.Fields["points_earned"]; !ok {
		t.Fatalf("fields = %v; want points_earned violation", vErr.Fields)
	}
}

func TestReviewRejectsAutoGradedQuestion(t *testing.T) {
	fx := newReviewFixture(t)

	_, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.mcID,
		&model.ReviewAnswerRequest{PointsEarned: points(2)})
	if !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("err = %v; want ErrInvalidQuestionType", err)
	}

	_, err = fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, uuid.New(),
		&model.ReviewAnswerRequest{PointsEarned: points(2)})
	if !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("unknown question err = %v; want ErrInvalidQuestionType", err)
	}
}

func TestReviewByNonOwnerDenied(t *testing.T) {
	fx := newReviewFixture(t)

	stranger := Principal{ID: uuid.New(), Role: model.RoleInstructor}
	_, err := fx.svc.ReviewAnswer(context.Background(), stranger, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(3)})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v; want ErrAccessDenied", err)
	}
}

func TestReviewMissingAnswerNotFound(t *testing.T) {
	fx := newReviewFixture(t)

	// Strip the essay answer from the stored attempt.
	stored := fx.attempts.attempts[fx.attempt.ID]
	stored.Answers = stored.Answers[:1]

	_, err := fx.svc.ReviewAnswer(context.Background(), fx.instructor, fx.attempt.ID, fx.essayID,
		&model.ReviewAnswerRequest{PointsEarned: points(3)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
