package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// AttemptResult combines student data with their attempt aggregate, for the
// instructor-facing results listing.
type AttemptResult struct {
	AttemptID     uuid.UUID           `json:"attempt_id"`
	StudentID     uuid.UUID           `json:"student_id"`
	StudentName   string              `json:"student_name"`
	StudentEmail  string              `json:"student_email"`
	AttemptNumber int                 `json:"attempt_number"`
	Score         int                 `json:"score"`
	Passed        bool                `json:"passed"`
	Status        model.AttemptStatus `json:"status"`
	NeedsReview   bool                `json:"needs_review"`
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
}

// AttemptRepository handles quiz attempt data access. It owns the two
// concurrency-sensitive writes of the system: attempt numbering (assigned by
// a subselect inside the INSERT, never read-count-then-write) and the
// grading lock (a single-statement conditional UPDATE on status).
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, quiz_id, student_id, course_id, attempt_number, answers,
	score, total_points, points_earned, passed, status, started_at, completed_at, time_spent`

func scanAttempt(row interface{ Scan(dest ...any) error }) (*model.QuizAttempt, error) {
	a := &model.QuizAttempt{}
	var answers []byte
	err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.CourseID, &a.AttemptNumber,
		&answers, &a.Score, &a.TotalPoints, &a.PointsEarned, &a.Passed, &a.Status,
		&a.StartedAt, &a.CompletedAt, &a.TimeSpent)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return a, nil
}

// Create inserts a new attempt. The attempt number comes from a subselect
// inside the INSERT; under READ COMMITTED two concurrent starts can still
// compute the same number, so the unique index on (quiz_id, student_id,
// attempt_number) settles the race and the loser re-runs the insert.
func (r *AttemptRepository) Create(ctx context.Context, a *model.QuizAttempt) error {
	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		err = r.pool.QueryRow(ctx,
			`INSERT INTO quiz_attempts (quiz_id, student_id, course_id, attempt_number, answers,
				total_points, status, started_at)
			 VALUES ($1, $2, $3,
				(SELECT COALESCE(MAX(attempt_number), 0) + 1
				 FROM quiz_attempts WHERE quiz_id = $1 AND student_id = $2),
				'[]'::jsonb, $4, $5, NOW())
			 RETURNING id, attempt_number, started_at`,
			a.QuizID, a.StudentID, a.CourseID, a.TotalPoints, model.AttemptStatusInProgress,
		).Scan(&a.ID, &a.AttemptNumber, &a.StartedAt)
		if !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuizAttempt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id)
	return scanAttempt(row)
}

// CountByQuizAndStudent counts a student's attempts for a quiz.
func (r *AttemptRepository) CountByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = $1 AND student_id = $2`,
		quizID, studentID,
	).Scan(&count)
	return count, err
}

// ListByQuizAndStudent retrieves a student's attempts for a quiz, oldest first.
func (r *AttemptRepository) ListByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) ([]model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts
		 WHERE quiz_id = $1 AND student_id = $2
		 ORDER BY attempt_number ASC`, quizID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.QuizAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// AcquireGradingLock performs the atomic in_progress → processing transition.
// It reports false when the attempt is already completed (or missing), which
// is the double-submission guard: of two concurrent submit calls only one
// observes a non-completed row.
func (r *AttemptRepository) AcquireGradingLock(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status <> $3`,
		model.AttemptStatusProcessing, id, model.AttemptStatusCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseGradingLock reverts processing back to in_progress, used when a
// submission is rejected (time limit) so the student can retry.
func (r *AttemptRepository) ReleaseGradingLock(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.AttemptStatusInProgress, id, model.AttemptStatusProcessing)
	return err
}

// CompleteGrading writes the graded answer set and aggregates in one
// statement, transitioning processing → completed.
func (r *AttemptRepository) CompleteGrading(ctx context.Context, a *model.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET answers = $1, score = $2, points_earned = $3, passed = $4,
		     completed_at = $5, time_spent = $6, status = $7, updated_at = NOW()
		 WHERE id = $8`,
		answers, a.Score, a.PointsEarned, a.Passed,
		a.CompletedAt, a.TimeSpent, model.AttemptStatusCompleted, a.ID)
	return err
}

// UpdateReview persists a manual-review mutation: the corrected answer set
// and the recomputed aggregates. Completed attempts accept no other change.
func (r *AttemptRepository) UpdateReview(ctx context.Context, a *model.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET answers = $1, score = $2, points_earned = $3, passed = $4, updated_at = NOW()
		 WHERE id = $5`,
		answers, a.Score, a.PointsEarned, a.Passed, a.ID)
	return err
}

// ListByQuiz retrieves all students' results for a quiz, for instructors.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]AttemptResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.student_id, u.name, u.email, a.attempt_number, a.score, a.passed,
		        a.status,
		        EXISTS (
		          SELECT 1 FROM jsonb_array_elements(a.answers) ans
		          WHERE (ans->>'needs_review')::boolean
		        ) AS needs_review,
		        a.started_at, a.completed_at
		 FROM quiz_attempts a
		 JOIN users u ON u.id = a.student_id
		 WHERE a.quiz_id = $1
		 ORDER BY u.name ASC, a.attempt_number ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AttemptResult
	for rows.Next() {
		var res AttemptResult
		if err := rows.Scan(&res.AttemptID, &res.StudentID, &res.StudentName, &res.StudentEmail,
			&res.AttemptNumber, &res.Score, &res.Passed, &res.Status, &res.NeedsReview,
			&res.StartedAt, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListPendingReview retrieves attempts with unreviewed answers across all
// quizzes created by the given instructor.
func (r *AttemptRepository) ListPendingReview(ctx context.Context, instructorID uuid.UUID) ([]model.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.quiz_id, a.student_id, a.course_id, a.attempt_number, a.answers,
		        a.score, a.total_points, a.points_earned, a.passed, a.status,
		        a.started_at, a.completed_at, a.time_spent
		 FROM quiz_attempts a
		 JOIN quizzes q ON q.id = a.quiz_id
		 WHERE q.created_by = $1
		   AND a.status = $2
		   AND EXISTS (
		     SELECT 1 FROM jsonb_array_elements(a.answers) ans
		     WHERE (ans->>'needs_review')::boolean
		   )
		 ORDER BY a.completed_at ASC`, instructorID, model.AttemptStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.QuizAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// ReapStale reverts attempts stuck in processing (crash mid-grade) older
// than the given age back to in_progress. Returns how many were reverted.
func (r *AttemptRepository) ReapStale(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts
		 SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND updated_at < NOW() - $3::interval`,
		model.AttemptStatusInProgress, model.AttemptStatusProcessing, age.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
