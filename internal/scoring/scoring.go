// Package scoring grades submitted quiz answers against a quiz definition.
// It is pure computation: no I/O, no clock, no storage. The attempt ledger
// calls Grade at submission time; the review workflow calls Recompute after
// an instructor assigns points to a manual-review answer.
package scoring

import (
	"math"

	"github.com/learnora/learnora-backend/internal/model"
)

// Result is the outcome of grading one submitted answer set.
type Result struct {
	Answers []model.Answer
	// Score is the 0–100 percentage over auto-gradable points only.
	// A quiz made entirely of manual-review questions scores 0 until
	// every answer has been reviewed and points re-injected.
	Score int
	// PointsEarned counts points from automatically graded answers.
	PointsEarned int
	TotalPoints  int
	Passed       bool
	// PendingReview is true when any answer awaits manual review.
	// Such attempts are provisionally failed regardless of score.
	PendingReview bool
}

// Grade evaluates submitted answers against the quiz definition.
//
// Answers referencing unknown question IDs are dropped. Manual-review
// questions (broad-text, essay) receive nil correctness and zero points.
// Everything else is graded by exact string equality against the stored
// correct answer.
func Grade(quiz *model.Quiz, submitted []model.AnswerInput) Result {
	res := Result{
		Answers:     make([]model.Answer, 0, len(submitted)),
		TotalPoints: quiz.TotalPoints(),
	}

	for _, input := range submitted {
		question := quiz.QuestionByID(input.QuestionID)
		if question == nil {
			continue
		}

		answer := model.Answer{
			QuestionID: input.QuestionID,
			Value:      input.Answer,
		}

		if question.Type.NeedsManualReview() {
			answer.NeedsReview = true
			res.PendingReview = true
		} else {
			correct := question.CorrectAnswer == input.Answer
			answer.IsCorrect = &correct
			if correct {
				answer.PointsEarned = question.Points
				res.PointsEarned += question.Points
			}
		}

		res.Answers = append(res.Answers, answer)
	}

	autoGradable := 0
	for _, question := range quiz.Questions {
		if !question.Type.NeedsManualReview() {
			autoGradable += question.Points
		}
	}

	if autoGradable > 0 {
		res.Score = percentage(res.PointsEarned, autoGradable)
	}
	res.Passed = !res.PendingReview && res.Score >= quiz.PassingScore

	return res
}

// Recompute derives the aggregate score after a manual review. Unlike Grade,
// the denominator is the quiz's full point total: once answers have been
// reviewed their points count against every question, not just the
// auto-gradable ones.
func Recompute(quiz *model.Quiz, answers []model.Answer) (pointsEarned, score int, passed bool) {
	for i := range answers {
		pointsEarned += answers[i].PointsEarned
	}

	if total := quiz.TotalPoints(); total > 0 {
		score = percentage(pointsEarned, total)
	}
	passed = score >= quiz.PassingScore

	return pointsEarned, score, passed
}

func percentage(earned, possible int) int {
	return int(math.Round(float64(earned) / float64(possible) * 100))
}
