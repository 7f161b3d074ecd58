package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// CourseRepository handles course data access. Lectures are stored embedded
// as JSONB: the curriculum is ordered and owned by its course.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, instructor_id, instructor_name, title, subtitle, description,
	category, level, language, welcome_message, pricing, objectives, lectures,
	is_published, created_at, updated_at`

func scanCourse(row interface{ Scan(dest ...any) error }) (*model.Course, error) {
	c := &model.Course{}
	var lectures []byte
	err := row.Scan(&c.ID, &c.InstructorID, &c.InstructorName, &c.Title, &c.Subtitle,
		&c.Description, &c.Category, &c.Level, &c.Language, &c.WelcomeMessage,
		&c.Pricing, &c.Objectives, &lectures, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lectures, &c.Lectures); err != nil {
		return nil, fmt.Errorf("decode lectures: %w", err)
	}
	return c, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	lectures, err := json.Marshal(c.Lectures)
	if err != nil {
		return fmt.Errorf("encode lectures: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (instructor_id, instructor_name, title, subtitle, description,
			category, level, language, welcome_message, pricing, objectives, lectures, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		c.InstructorID, c.InstructorName, c.Title, c.Subtitle, c.Description,
		c.Category, c.Level, c.Language, c.WelcomeMessage, c.Pricing, c.Objectives,
		lectures, c.IsPublished,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update replaces a course owned by the instructor. Returns affected rows.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) (int64, error) {
	lectures, err := json.Marshal(c.Lectures)
	if err != nil {
		return 0, fmt.Errorf("encode lectures: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $1, subtitle = $2, description = $3, category = $4, level = $5,
		     language = $6, welcome_message = $7, pricing = $8, objectives = $9,
		     lectures = $10, is_published = $11, updated_at = NOW()
		 WHERE id = $12 AND instructor_id = $13`,
		c.Title, c.Subtitle, c.Description, c.Category, c.Level, c.Language,
		c.WelcomeMessage, c.Pricing, c.Objectives, lectures, c.IsPublished,
		c.ID, c.InstructorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

// ListByInstructor retrieves all courses owned by an instructor.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC`,
		instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// ListPublished retrieves published courses for the student catalog.
func (r *CourseRepository) ListPublished(ctx context.Context, page, perPage int) ([]model.Course, int64, error) {
	offset := (page - 1) * perPage

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE is_published`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE is_published
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}
