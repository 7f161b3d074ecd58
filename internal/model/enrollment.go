package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment records a student's membership in a course, created when an
// order completes.
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	StudentID  uuid.UUID `json:"student_id"`
	CourseID   uuid.UUID `json:"course_id"`
	PaidAmount float64   `json:"paid_amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateOrderRequest is the payload for purchasing a course. Payment is a
// stub that always succeeds; the order immediately becomes an enrollment.
type CreateOrderRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}
