package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/rs/zerolog"
)

// OrderService turns course purchases into enrollments. Payment is a stub
// that always succeeds, so an order completes synchronously.
type OrderService struct {
	enrollments *repository.EnrollmentRepository
	courses     *repository.CourseRepository
	audit       AuditSink
	log         zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	enrollments *repository.EnrollmentRepository,
	courses *repository.CourseRepository,
	audit AuditSink,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		enrollments: enrollments,
		courses:     courses,
		audit:       audit,
		log:         log.With().Str("component", "order_service").Logger(),
	}
}

// Purchase enrolls the student in a published course at its current price.
// Re-purchasing an owned course returns the existing enrollment.
func (s *OrderService) Purchase(ctx context.Context, student Principal, courseID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if !course.IsPublished {
		return nil, ErrNotFound
	}

	enrollment := &model.Enrollment{
		StudentID:  student.ID,
		CourseID:   courseID,
		PaidAmount: course.Pricing,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    student.ID,
		ActorName:  student.Name,
		Action:     model.AuditCourseEnrollment,
		TargetType: "course",
		TargetID:   courseID.String(),
		TargetName: course.Title,
	})

	s.log.Info().
		Str("student_id", student.ID.String()).
		Str("course_id", courseID.String()).
		Float64("paid_amount", enrollment.PaidAmount).
		Msg("Course purchased")

	return enrollment, nil
}

// ListOwnedCourses retrieves the courses the student has purchased.
func (s *OrderService) ListOwnedCourses(ctx context.Context, studentID uuid.UUID) ([]model.Course, error) {
	courses, err := s.enrollments.ListCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list owned courses: %w", err)
	}
	return courses, nil
}
