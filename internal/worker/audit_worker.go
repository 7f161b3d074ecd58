package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the Redis audit event queue into audit_logs in
// batches. Services push events fire-and-forget; this worker is the only
// writer of the audit trail.
type AuditWorker struct {
	repo *repository.AuditRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(repo *repository.AuditRepository, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]*model.AuditEvent, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.AuditEvent
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &e)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with single-row fallback
// ----------------------------------------------------------------

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.AuditEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.repo.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("Bulk audit insert failed, using fallback")

		for _, e := range batch {
			if err := w.repo.Insert(ctx, e); err != nil {
				w.log.Error().Err(err).Msg("Single audit insert failed — requeueing")
				raw, _ := json.Marshal(e)
				w.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw)
			}
		}
	}
}
