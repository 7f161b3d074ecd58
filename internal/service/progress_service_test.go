package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/rs/zerolog"
)

type progressFixture struct {
	svc       *ProgressService
	quizzes   *fakeQuizStore
	progress  *fakeProgressStore
	course    *model.Course
	finalQuiz *model.Quiz
	studentID uuid.UUID
}

// newProgressFixture builds a course with two lectures and one final quiz,
// with the student enrolled.
func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	studentID := uuid.New()
	course := &model.Course{
		ID:           uuid.New(),
		InstructorID: uuid.New(),
		Title:        "Go Fundamentals",
		Lectures: []model.Lecture{
			{ID: uuid.New(), Title: "Lecture 1"},
			{ID: uuid.New(), Title: "Lecture 2"},
		},
		IsPublished: true,
	}
	finalQuiz := &model.Quiz{
		ID:       uuid.New(),
		CourseID: course.ID,
		QuizType: model.QuizTypeFinal,
		Title:    "Final",
		Questions: []model.Question{
			{ID: uuid.New(), Type: model.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 1},
		},
		PassingScore: 70,
		IsActive:     true,
		CreatedBy:    course.InstructorID,
	}

	quizzes := newFakeQuizStore(finalQuiz)
	progress := newFakeProgressStore()
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll(studentID, course.ID)

	svc := NewProgressService(progress, newFakeCatalog(course), quizzes, enrollments, nil, NopAuditSink{}, zerolog.Nop())

	return &progressFixture{
		svc:       svc,
		quizzes:   quizzes,
		progress:  progress,
		course:    course,
		finalQuiz: finalQuiz,
		studentID: studentID,
	}
}

func (fx *progressFixture) watchLecture(t *testing.T, lectureID uuid.UUID) *model.CourseProgress {
	t.Helper()
	p, err := fx.svc.RecordLectureView(context.Background(), fx.studentID, fx.course.ID, &model.RecordLectureViewRequest{
		LectureID:     lectureID,
		ProgressValue: 1,
	})
	if err != nil {
		t.Fatalf("record lecture view: %v", err)
	}
	return p
}

func TestLectureViewIsIdempotent(t *testing.T) {
	fx := newProgressFixture(t)

	first := fx.watchLecture(t, fx.course.Lectures[0].ID)
	lp := first.LectureByID(fx.course.Lectures[0].ID)
	if lp == nil || !lp.Viewed {
		t.Fatal("lecture not marked viewed")
	}
	firstViewed := *lp.DateViewed

	second := fx.watchLecture(t, fx.course.Lectures[0].ID)
	lp = second.LectureByID(fx.course.Lectures[0].ID)
	if !lp.DateViewed.Equal(firstViewed) {
		t.Fatalf("date_viewed changed on repeat view: %v != %v", lp.DateViewed, firstViewed)
	}
	if lp.RewatchCount != 0 {
		t.Fatalf("rewatch_count = %d; want 0 for plain repeat", lp.RewatchCount)
	}
	if second.ProgressPercentage != first.ProgressPercentage {
		t.Fatalf("percentage moved on repeat view: %d != %d", second.ProgressPercentage, first.ProgressPercentage)
	}
}

func TestRewatchBumpsCounterOnly(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	fx.watchLecture(t, fx.course.Lectures[0].ID)

	p, err := fx.svc.RecordLectureView(ctx, fx.studentID, fx.course.ID, &model.RecordLectureViewRequest{
		LectureID: fx.course.Lectures[0].ID,
		IsRewatch: true,
	})
	if err != nil {
		t.Fatalf("rewatch: %v", err)
	}

	lp := p.LectureByID(fx.course.Lectures[0].ID)
	if lp.RewatchCount != 1 {
		t.Fatalf("rewatch_count = %d; want 1", lp.RewatchCount)
	}
	if !lp.Viewed || lp.ProgressValue < 1 {
		t.Fatal("rewatch must not reset completion state")
	}
}

func TestPartialWatchDoesNotComplete(t *testing.T) {
	fx := newProgressFixture(t)

	p, err := fx.svc.RecordLectureView(context.Background(), fx.studentID, fx.course.ID, &model.RecordLectureViewRequest{
		LectureID:     fx.course.Lectures[0].ID,
		ProgressValue: 0.5,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	lp := p.LectureByID(fx.course.Lectures[0].ID)
	if lp.Viewed {
		t.Fatal("lecture marked viewed at 50% watch progress")
	}
	if p.ProgressPercentage != 0 {
		t.Fatalf("percentage = %d; want 0 with no completed lectures", p.ProgressPercentage)
	}
}

func TestPercentageBlendsLecturesAndQuizzes(t *testing.T) {
	fx := newProgressFixture(t)

	// One of two lectures done: lecture share is 25 of the 50 lecture points.
	p := fx.watchLecture(t, fx.course.Lectures[0].ID)
	if p.ProgressPercentage != 25 {
		t.Fatalf("percentage = %d; want 25", p.ProgressPercentage)
	}

	// Passing the only quiz adds the full 50 quiz points.
	p, err := fx.svc.RecordQuizOutcome(context.Background(), fx.studentID, fx.course.ID, fx.finalQuiz.ID, 90, true, time.Now())
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if p.ProgressPercentage != 75 {
		t.Fatalf("percentage = %d; want 75", p.ProgressPercentage)
	}
}

func TestCompletionRequiresLecturesAndFinalQuizzes(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	fx.watchLecture(t, fx.course.Lectures[0].ID)
	p := fx.watchLecture(t, fx.course.Lectures[1].ID)
	if p.Completed {
		t.Fatal("completed before the final quiz was passed")
	}

	p, err := fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 80, true, time.Now())
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if !p.Completed || p.CompletionDate == nil {
		t.Fatal("course not completed after all lectures and final quiz")
	}
	if p.ProgressPercentage != 100 {
		t.Fatalf("percentage = %d; want 100", p.ProgressPercentage)
	}

	// A failed retake must not un-complete the course.
	p, err = fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 10, false, time.Now())
	if err != nil {
		t.Fatalf("record failing outcome: %v", err)
	}
	if !p.Completed {
		t.Fatal("completion flag regressed on a failed retake")
	}
	qp := p.QuizByID(fx.finalQuiz.ID)
	if !qp.Completed || qp.BestScore != 80 {
		t.Fatalf("quiz progress = %+v; completion and best score must latch", qp)
	}
}

func TestQuizOutcomeTracksBestScoreAndAttempts(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 40, false, time.Now())
	p, err := fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 30, false, time.Now())
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	qp := p.QuizByID(fx.finalQuiz.ID)
	if qp.Attempts != 2 {
		t.Fatalf("attempts = %d; want 2", qp.Attempts)
	}
	if qp.BestScore != 40 {
		t.Fatalf("best_score = %d; want 40", qp.BestScore)
	}
	if qp.Completed {
		t.Fatal("quiz completed without a passing attempt")
	}
}

func TestQuizReviewDoesNotCountAttempt(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 50, false, time.Now())
	p, err := fx.svc.RecordQuizReview(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 85, true, time.Now())
	if err != nil {
		t.Fatalf("record review: %v", err)
	}

	qp := p.QuizByID(fx.finalQuiz.ID)
	if qp.Attempts != 1 {
		t.Fatalf("attempts = %d; review must not count a new attempt", qp.Attempts)
	}
	if qp.BestScore != 85 || !qp.Completed {
		t.Fatalf("quiz progress = %+v; review outcome not applied", qp)
	}
}

func TestReplacedLecturesDiscardStaleProgress(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	// Watch the full original curriculum.
	fx.watchLecture(t, fx.course.Lectures[0].ID)
	p := fx.watchLecture(t, fx.course.Lectures[1].ID)
	if p.ProgressPercentage != 50 {
		t.Fatalf("percentage = %d; want 50 with all lectures watched", p.ProgressPercentage)
	}

	// The instructor replaces the curriculum; old entries must stop counting.
	fx.course.Lectures = []model.Lecture{
		{ID: uuid.New(), Title: "Rewritten 1"},
		{ID: uuid.New(), Title: "Rewritten 2"},
	}

	p, err := fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 90, true, time.Now())
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if p.Completed {
		t.Fatal("course completed on stale lecture progress after curriculum replacement")
	}
	if p.ProgressPercentage != 50 {
		t.Fatalf("percentage = %d; want 50 (quiz share only, new lectures unwatched)", p.ProgressPercentage)
	}
}

func TestResetWipesProgress(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	fx.watchLecture(t, fx.course.Lectures[0].ID)
	fx.watchLecture(t, fx.course.Lectures[1].ID)
	fx.svc.RecordQuizOutcome(ctx, fx.studentID, fx.course.ID, fx.finalQuiz.ID, 95, true, time.Now())

	p, err := fx.svc.Reset(ctx, Principal{ID: fx.studentID, Role: model.RoleStudent}, fx.course.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}

	if p.Completed || p.CompletionDate != nil || p.ProgressPercentage != 0 {
		t.Fatalf("progress after reset = %+v; want empty record", p)
	}
	if len(p.Lectures) != 0 || len(p.Quizzes) != 0 {
		t.Fatal("reset left lecture or quiz entries behind")
	}
}

func TestGetReportsPurchaseState(t *testing.T) {
	fx := newProgressFixture(t)
	ctx := context.Background()

	view, err := fx.svc.Get(ctx, uuid.New(), fx.course.ID)
	if err != nil {
		t.Fatalf("get for stranger: %v", err)
	}
	if view.Purchased || view.Progress != nil {
		t.Fatalf("view = %+v; want unpurchased with no progress", view)
	}

	view, err = fx.svc.Get(ctx, fx.studentID, fx.course.ID)
	if err != nil {
		t.Fatalf("get for student: %v", err)
	}
	if !view.Purchased || view.Progress == nil {
		t.Fatalf("view = %+v; want purchased with empty record", view)
	}
	if view.Course == nil || view.Course.ID != fx.course.ID {
		t.Fatal("course details missing from progress view")
	}
}
