package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// EnrollmentRepository handles course enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts an enrollment. Re-enrolling is a no-op.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (student_id, course_id, paid_amount)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (student_id, course_id) DO UPDATE SET paid_amount = enrollments.paid_amount
		 RETURNING id, created_at`,
		e.StudentID, e.CourseID, e.PaidAmount,
	).Scan(&e.ID, &e.CreatedAt)
}

// Exists answers the membership predicate: is the student enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID,
	).Scan(&exists)
	return exists, err
}

// ListCoursesByStudent retrieves the courses a student is enrolled in.
func (r *EnrollmentRepository) ListCoursesByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixedCourseColumns("c")+`
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 WHERE e.student_id = $1
		 ORDER BY e.created_at DESC`, studentID)
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

func prefixedCourseColumns(alias string) string {
	return alias + `.id, ` + alias + `.instructor_id, ` + alias + `.instructor_name, ` +
		alias + `.title, ` + alias + `.subtitle, ` + alias + `.description, ` +
		alias + `.category, ` + alias + `.level, ` + alias + `.language, ` +
		alias + `.welcome_message, ` + alias + `.pricing, ` + alias + `.objectives, ` +
		alias + `.lectures, ` + alias + `.is_published, ` + alias + `.created_at, ` +
		alias + `.updated_at`
}
