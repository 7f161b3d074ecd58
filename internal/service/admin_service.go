package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/rs/zerolog"
)

// AdminService covers the administrative surface: user management and the
// audit trail.
type AdminService struct {
	users *repository.UserRepository
	logs  *repository.AuditRepository
	audit AuditSink
	log   zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users *repository.UserRepository,
	logs *repository.AuditRepository,
	audit AuditSink,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users: users,
		logs:  logs,
		audit: audit,
		log:   log.With().Str("component", "admin_service").Logger(),
	}
}

// ListUsers retrieves users with pagination and an optional role filter.
func (s *AdminService) ListUsers(ctx context.Context, page, perPage int, role *model.Role) ([]model.User, int64, error) {
	users, total, err := s.users.List(ctx, page, perPage, role)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// SetUserStatus activates or deactivates an account. Deactivated users
// cannot log in; their existing tokens expire naturally.
func (s *AdminService) SetUserStatus(ctx context.Context, admin Principal, userID uuid.UUID, status model.UserStatus) error {
	if userID == admin.ID {
		return NewValidationError(map[string]string{
			"user_id": "cannot change your own status",
		})
	}

	rows, err := s.users.UpdateStatus(ctx, userID, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	action := model.AuditUserDeactivated
	if status == model.UserStatusActive {
		action = model.AuditUserActivated
	}
	s.audit.Emit(ctx, &model.AuditEvent{
		ActorID:    admin.ID,
		ActorName:  admin.Name,
		Action:     action,
		TargetType: "user",
		TargetID:   userID.String(),
	})

	return nil
}

// ListAuditLogs retrieves the audit trail, newest first.
func (s *AdminService) ListAuditLogs(ctx context.Context, page, perPage int, action *model.AuditAction) ([]model.AuditLog, int64, error) {
	logs, total, err := s.logs.List(ctx, page, perPage, action)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, nil
}
