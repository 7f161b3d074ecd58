package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// QuizRepository handles quiz definition data access. Questions are stored
// embedded as JSONB: a question belongs to exactly one quiz and has no
// independent lifecycle.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, course_id, lecture_id, quiz_type, title, description, questions,
	passing_score, time_limit, attempts_allowed, is_active, created_by, created_at, updated_at`

func scanQuiz(row interface{ Scan(dest ...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	var questions []byte
	err := row.Scan(&q.ID, &q.CourseID, &q.LectureID, &q.QuizType, &q.Title, &q.Description,
		&questions, &q.PassingScore, &q.TimeLimit, &q.AttemptsAllowed, &q.IsActive,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return q, nil
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (course_id, lecture_id, quiz_type, title, description, questions,
			passing_score, time_limit, attempts_allowed, is_active, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		q.CourseID, q.LectureID, q.QuizType, q.Title, q.Description, questions,
		q.PassingScore, q.TimeLimit, q.AttemptsAllowed, q.IsActive, q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	return scanQuiz(row)
}

// GetOwned retrieves a quiz only if the given instructor created it.
func (r *QuizRepository) GetOwned(ctx context.Context, id, instructorID uuid.UUID) (*model.Quiz, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1 AND created_by = $2`,
		id, instructorID)
	return scanQuiz(row)
}

// Update replaces a quiz owned by the instructor. Returns affected rows.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) (int64, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return 0, fmt.Errorf("encode questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, description = $2, questions = $3, passing_score = $4,
		     time_limit = $5, attempts_allowed = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8 AND created_by = $9`,
		q.Title, q.Description, questions, q.PassingScore,
		q.TimeLimit, q.AttemptsAllowed, q.IsActive, q.ID, q.CreatedBy)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes a quiz owned by the instructor. Returns affected rows.
func (r *QuizRepository) Delete(ctx context.Context, id, instructorID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quizzes WHERE id = $1 AND created_by = $2`, id, instructorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByCourse retrieves a course's quizzes. When activeOnly is set,
// deactivated quizzes are excluded (the student view).
func (r *QuizRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, activeOnly bool) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE course_id = $1 AND ($2 = false OR is_active)
		 ORDER BY created_at ASC`, courseID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// ListByCourseAndOwner retrieves an instructor's quizzes for one course.
func (r *QuizRepository) ListByCourseAndOwner(ctx context.Context, courseID, instructorID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE course_id = $1 AND created_by = $2
		 ORDER BY created_at ASC`, courseID, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}
