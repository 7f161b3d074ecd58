package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AuditSink receives best-effort audit events. Implementations must never
// fail the caller: a lost audit event is logged, not propagated.
type AuditSink interface {
	Emit(ctx context.Context, event *model.AuditEvent)
}

// RedisAuditSink pushes audit events onto the Redis queue drained by the
// audit worker.
type RedisAuditSink struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisAuditSink creates a Redis-backed audit sink.
func NewRedisAuditSink(rdb *redis.Client, log zerolog.Logger) *RedisAuditSink {
	return &RedisAuditSink{
		rdb: rdb,
		log: log.With().Str("component", "audit_sink").Logger(),
	}
}

// Emit enqueues the event. Failures are logged and swallowed.
func (s *RedisAuditSink) Emit(ctx context.Context, event *model.AuditEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	raw, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("action", string(event.Action)).Msg("Marshal audit event failed")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("action", string(event.Action)).Msg("Enqueue audit event failed")
	}
}

// NopAuditSink discards events. Used in tests.
type NopAuditSink struct{}

// Emit discards the event.
func (NopAuditSink) Emit(context.Context, *model.AuditEvent) {}
