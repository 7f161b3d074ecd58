package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
)

func mcQuestion(id uuid.UUID, correct string, points int) model.Question {
	return model.Question{
		ID:            id,
		Type:          model.QuestionTypeMultipleChoice,
		Prompt:        "pick one",
		Options:       []string{"a", "b", "c"},
		CorrectAnswer: correct,
		Points:        points,
	}
}

func broadQuestion(id uuid.UUID, points int) model.Question {
	return model.Question{
		ID:     id,
		Type:   model.QuestionTypeBroadText,
		Prompt: "explain",
		Points: points,
	}
}

func newQuiz(passingScore int, questions ...model.Question) *model.Quiz {
	return &model.Quiz{
		ID:           uuid.New(),
		CourseID:     uuid.New(),
		QuizType:     model.QuizTypeLesson,
		Title:        "test quiz",
		Questions:    questions,
		PassingScore: passingScore,
		IsActive:     true,
	}
}

func TestGradeAllCorrectScoresHundred(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(70, mcQuestion(q1, "0", 2), mcQuestion(q2, "1", 1))

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: q1, Answer: "0"},
		{QuestionID: q2, Answer: "1"},
	})

	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
	if !res.Passed {
		t.Error("expected passed")
	}
	if res.PointsEarned != 3 {
		t.Errorf("points earned = %d, want 3", res.PointsEarned)
	}
}

func TestGradePartialCredit(t *testing.T) {
	// 2 + 1 points, passing score 70. One correct answer of 2 points
	// gives round(100*2/3) = 67, below the threshold.
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(70, mcQuestion(q1, "0", 2), mcQuestion(q2, "1", 1))

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: q1, Answer: "0"},
		{QuestionID: q2, Answer: "2"},
	})

	if res.Score != 67 {
		t.Errorf("score = %d, want 67", res.Score)
	}
	if res.Passed {
		t.Error("expected not passed")
	}
	if res.PointsEarned != 2 {
		t.Errorf("points earned = %d, want 2", res.PointsEarned)
	}
}

func TestGradeAllManualReviewScoresZero(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(0, broadQuestion(q1, 5), broadQuestion(q2, 5))

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: q1, Answer: "a thoughtful essay"},
		{QuestionID: q2, Answer: "another essay"},
	})

	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
	if res.Passed {
		t.Error("attempt with pending review must not pass")
	}
	if !res.PendingReview {
		t.Error("expected pending review")
	}
	for _, ans := range res.Answers {
		if ans.IsCorrect != nil {
			t.Error("manual-review answers must have nil correctness")
		}
		if ans.PointsEarned != 0 {
			t.Error("manual-review answers must earn 0 points at submission")
		}
		if !ans.NeedsReview {
			t.Error("manual-review answers must be flagged for review")
		}
	}
}

func TestGradeMixedAutoAndManual(t *testing.T) {
	// One auto question (2 pts) answered correctly and one broad-text
	// (3 pts): the auto-only denominator yields 100, but the pending
	// review keeps the attempt failed.
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(70, mcQuestion(q1, "1", 2), broadQuestion(q2, 3))

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: q1, Answer: "1"},
		{QuestionID: q2, Answer: "free text"},
	})

	if res.Score != 100 {
		t.Errorf("score = %d, want 100 (auto-only denominator)", res.Score)
	}
	if res.Passed {
		t.Error("pending review must hold passed at false")
	}
}

func TestGradeDropsUnknownQuestions(t *testing.T) {
	q1 := uuid.New()
	quiz := newQuiz(50, mcQuestion(q1, "0", 1))

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: q1, Answer: "0"},
		{QuestionID: uuid.New(), Answer: "stray"},
	})

	if len(res.Answers) != 1 {
		t.Fatalf("answers = %d, want 1 (unknown question dropped)", len(res.Answers))
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
}

func TestGradeTrueFalseAndShortAnswer(t *testing.T) {
	tf := model.Question{
		ID: uuid.New(), Type: model.QuestionTypeTrueFalse,
		Prompt: "t/f", CorrectAnswer: "true", Points: 1,
	}
	sa := model.Question{
		ID: uuid.New(), Type: model.QuestionTypeShortAnswer,
		Prompt: "short", CorrectAnswer: "gopher", Points: 1,
	}
	quiz := newQuiz(100, tf, sa)

	res := Grade(quiz, []model.AnswerInput{
		{QuestionID: tf.ID, Answer: "true"},
		{QuestionID: sa.ID, Answer: "Gopher"}, // comparison is exact, case matters
	})

	if res.Score != 50 {
		t.Errorf("score = %d, want 50", res.Score)
	}
	if res.Passed {
		t.Error("expected not passed")
	}
}

func TestRecomputeUsesFullDenominator(t *testing.T) {
	// Mixed quiz: auto 2 pts + manual 3 pts. After review grants 3/3,
	// the denominator switches to all points: round(100*5/5) = 100.
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(70, mcQuestion(q1, "1", 2), broadQuestion(q2, 3))

	correct := true
	answers := []model.Answer{
		{QuestionID: q1, Value: "1", IsCorrect: &correct, PointsEarned: 2},
		{QuestionID: q2, Value: "essay", IsCorrect: &correct, PointsEarned: 3},
	}

	earned, score, passed := Recompute(quiz, answers)
	if earned != 5 {
		t.Errorf("earned = %d, want 5", earned)
	}
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if !passed {
		t.Error("expected passed")
	}
}

func TestRecomputePartialReviewPoints(t *testing.T) {
	q1, q2 := uuid.New(), uuid.New()
	quiz := newQuiz(70, mcQuestion(q1, "1", 2), broadQuestion(q2, 3))

	correct := true
	incorrect := false
	answers := []model.Answer{
		{QuestionID: q1, Value: "1", IsCorrect: &correct, PointsEarned: 2},
		{QuestionID: q2, Value: "weak essay", IsCorrect: &incorrect, PointsEarned: 1},
	}

	_, score, passed := Recompute(quiz, answers)
	if score != 60 {
		t.Errorf("score = %d, want 60", score)
	}
	if passed {
		t.Error("expected not passed at 60 against threshold 70")
	}
}
