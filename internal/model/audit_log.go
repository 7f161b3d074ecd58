package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates the recorded action kinds.
type AuditAction string

const (
	AuditUserActivated    AuditAction = "user_activated"
	AuditUserDeactivated  AuditAction = "user_deactivated"
	AuditQuizCreated      AuditAction = "quiz_created"
	AuditQuizDeleted      AuditAction = "quiz_deleted"
	AuditAttemptGraded    AuditAction = "attempt_graded"
	AuditAnswerReviewed   AuditAction = "answer_reviewed"
	AuditProgressReset    AuditAction = "progress_reset"
	AuditCourseEnrollment AuditAction = "course_enrollment"
)

// AuditLog is one persisted audit trail entry.
type AuditLog struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    uuid.UUID       `json:"actor_id"`
	ActorName  string          `json:"actor_name"`
	Action     AuditAction     `json:"action"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	TargetName string          `json:"target_name,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditEvent is the queue payload pushed to Redis by services and drained
// into audit_logs by the audit worker. Delivery is best-effort: losing an
// event never fails the operation that emitted it.
type AuditEvent struct {
	ActorID    uuid.UUID       `json:"actor_id"`
	ActorName  string          `json:"actor_name"`
	Action     AuditAction     `json:"action"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	TargetName string          `json:"target_name,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
