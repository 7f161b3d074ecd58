package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// ProgressRepository handles course progress data access. Each (student,
// course) pair holds one row; the lecture and quiz progress sequences live
// in JSONB columns and are written whole (last-writer-wins, per the
// concurrency model).
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// GetByStudentAndCourse retrieves the progress record for a (student, course)
// pair.
func (r *ProgressRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.CourseProgress, error) {
	p := &model.CourseProgress{}
	var lectures, quizzes []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, course_id, completed, completion_date, progress_percentage,
		        lectures_progress, quizzes_progress
		 FROM course_progress
		 WHERE student_id = $1 AND course_id = $2`, studentID, courseID,
	).Scan(&p.ID, &p.StudentID, &p.CourseID, &p.Completed, &p.CompletionDate,
		&p.ProgressPercentage, &lectures, &quizzes)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lectures, &p.Lectures); err != nil {
		return nil, fmt.Errorf("decode lectures progress: %w", err)
	}
	if err := json.Unmarshal(quizzes, &p.Quizzes); err != nil {
		return nil, fmt.Errorf("decode quizzes progress: %w", err)
	}
	return p, nil
}

// Upsert writes the full progress record, creating it lazily on first use.
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.CourseProgress) error {
	lectures, err := json.Marshal(p.Lectures)
	if err != nil {
		return fmt.Errorf("encode lectures progress: %w", err)
	}
	quizzes, err := json.Marshal(p.Quizzes)
	if err != nil {
		return fmt.Errorf("encode quizzes progress: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO course_progress (student_id, course_id, completed, completion_date,
			progress_percentage, lectures_progress, quizzes_progress)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (student_id, course_id) DO UPDATE
		 SET completed = EXCLUDED.completed,
		     completion_date = EXCLUDED.completion_date,
		     progress_percentage = EXCLUDED.progress_percentage,
		     lectures_progress = EXCLUDED.lectures_progress,
		     quizzes_progress = EXCLUDED.quizzes_progress,
		     updated_at = NOW()
		 RETURNING id`,
		p.StudentID, p.CourseID, p.Completed, p.CompletionDate,
		p.ProgressPercentage, lectures, quizzes,
	).Scan(&p.ID)
}
