package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnora/learnora-backend/internal/model"
)

// AuditRepository handles audit log persistence. Writes arrive in batches
// from the audit worker.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertBatch bulk-inserts audit events using UNNEST arrays.
func (r *AuditRepository) InsertBatch(ctx context.Context, events []*model.AuditEvent) error {
	n := len(events)
	if n == 0 {
		return nil
	}

	actorIDs := make([]uuid.UUID, n)
	actorNames := make([]string, n)
	actions := make([]string, n)
	targetTypes := make([]string, n)
	targetIDs := make([]string, n)
	targetNames := make([]string, n)
	details := make([][]byte, n)
	ips := make([]string, n)
	agents := make([]string, n)
	occurredAts := make([]time.Time, n)

	for i, e := range events {
		actorIDs[i] = e.ActorID
		actorNames[i] = e.ActorName
		actions[i] = string(e.Action)
		targetTypes[i] = e.TargetType
		targetIDs[i] = e.TargetID
		targetNames[i] = e.TargetName
		if len(e.Details) > 0 {
			details[i] = e.Details
		} else {
			details[i] = []byte("null")
		}
		ips[i] = e.IPAddress
		agents[i] = e.UserAgent
		occurredAts[i] = e.OccurredAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, actor_name, action, target_type, target_id,
			target_name, details, ip_address, user_agent, created_at)
		 SELECT * FROM UNNEST(
			$1::uuid[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::text[], $7::jsonb[], $8::text[], $9::text[], $10::timestamptz[]
		 )`,
		actorIDs, actorNames, actions, targetTypes, targetIDs,
		targetNames, details, ips, agents, occurredAts)
	return err
}

// Insert persists a single audit event (fallback path).
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEvent) error {
	var details json.RawMessage
	if len(e.Details) > 0 {
		details = e.Details
	} else {
		details = json.RawMessage("null")
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, actor_name, action, target_type, target_id,
			target_name, details, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ActorID, e.ActorName, e.Action, e.TargetType, e.TargetID,
		e.TargetName, details, e.IPAddress, e.UserAgent, e.OccurredAt)
	return err
}

// List retrieves audit entries newest first, optionally filtered by action.
func (r *AuditRepository) List(ctx context.Context, page, perPage int, action *model.AuditAction) ([]model.AuditLog, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := ` FROM audit_logs WHERE ($1::text IS NULL OR action = $1)`
	var actionArg *string
	if action != nil {
		s := string(*action)
		actionArg = &s
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, actionArg).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, actor_name, action, target_type, target_id, target_name,
		        details, ip_address, user_agent, created_at`+
			baseQuery+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		actionArg, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorName, &l.Action, &l.TargetType,
			&l.TargetID, &l.TargetName, &l.Details, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
