package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// LectureProgress tracks a student's watch state for one lecture.
type LectureProgress struct {
	LectureID     uuid.UUID  `json:"lecture_id"`
	Viewed        bool       `json:"viewed"`
	ProgressValue float64    `json:"progress_value"` // 0..1
	RewatchCount  int        `json:"rewatch_count"`
	DateViewed    *time.Time `json:"date_viewed,omitempty"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
}

// QuizProgress tracks a student's quiz outcomes for one quiz.
// Completed latches true on the first passing attempt and is never unset
// except by a full progress reset.
type QuizProgress struct {
	QuizID        uuid.UUID  `json:"quiz_id"`
	Completed     bool       `json:"completed"`
	BestScore     int        `json:"best_score"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// CourseProgress is a student's aggregate progress in one course.
type CourseProgress struct {
	ID                 uuid.UUID         `json:"id"`
	StudentID          uuid.UUID         `json:"student_id"`
	CourseID           uuid.UUID         `json:"course_id"`
	Completed          bool              `json:"completed"`
	CompletionDate     *time.Time        `json:"completion_date,omitempty"`
	ProgressPercentage int               `json:"progress_percentage"`
	Lectures           []LectureProgress `json:"lectures"`
	Quizzes            []QuizProgress    `json:"quizzes"`
}

// LectureByID finds the progress entry for a lecture, or nil.
func (p *CourseProgress) LectureByID(lectureID uuid.UUID) *LectureProgress {
	for i := range p.Lectures {
		if p.Lectures[i].LectureID == lectureID {
			return &p.Lectures[i]
		}
	}
	return nil
}

// QuizByID finds the progress entry for a quiz, or nil.
func (p *CourseProgress) QuizByID(quizID uuid.UUID) *QuizProgress {
	for i := range p.Quizzes {
		if p.Quizzes[i].QuizID == quizID {
			return &p.Quizzes[i]
		}
	}
	return nil
}

// IsLectureCompleted reports whether a lecture has been fully watched.
func (p *CourseProgress) IsLectureCompleted(lectureID uuid.UUID) bool {
	lp := p.LectureByID(lectureID)
	return lp != nil && (lp.Viewed || lp.ProgressValue >= 1)
}

// AllLecturesCompleted reports whether every lecture of the course shows
// full watch progress. Only the catalog's current lectures count: stale
// progress rows left behind by replaced lectures never satisfy completion.
func (p *CourseProgress) AllLecturesCompleted(lectures []Lecture) bool {
	if len(lectures) == 0 {
		return false
	}
	for i := range lectures {
		lp := p.LectureByID(lectures[i].ID)
		if lp == nil || !lp.Viewed || lp.ProgressValue < 1 {
			return false
		}
	}
	return true
}

// CalculatePercentage derives the blended 50/50 progress metric:
// half from fully watched lectures, half from passed quizzes. A term with a
// zero denominator contributes nothing. Progress entries are intersected
// against the catalog's current lectures and quizzes, so replaced content
// drops out of both numerator and denominator.
func (p *CourseProgress) CalculatePercentage(lectures []Lecture, quizzes []Quiz) int {
	var lectureShare, quizShare float64

	if len(lectures) > 0 {
		completed := 0
		for i := range lectures {
			lp := p.LectureByID(lectures[i].ID)
			if lp != nil && lp.Viewed && lp.ProgressValue >= 1 {
				completed++
			}
		}
		lectureShare = float64(completed) / float64(len(lectures)) * 50
	}

	if len(quizzes) > 0 {
		completed := 0
		for i := range quizzes {
			qp := p.QuizByID(quizzes[i].ID)
			if qp != nil && qp.Completed {
				completed++
			}
		}
		quizShare = float64(completed) / float64(len(quizzes)) * 50
	}

	return int(math.Round(lectureShare + quizShare))
}

// RecordLectureViewRequest is the payload for reporting lecture watch progress.
type RecordLectureViewRequest struct {
	LectureID     uuid.UUID `json:"lecture_id" binding:"required"`
	ProgressValue float64   `json:"progress_value" binding:"min=0,max=1"`
	IsRewatch     bool      `json:"is_rewatch"`
}
