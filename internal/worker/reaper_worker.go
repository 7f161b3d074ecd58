package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ReaperWorker periodically reverts attempts stuck in PROCESSING back to
// in_progress. A crash between acquiring the grading lock and persisting
// the result would otherwise leave the attempt locked forever.
type ReaperWorker struct {
	attempts  *repository.AttemptRepository
	scheduler *gocron.Scheduler
	age       time.Duration
	interval  time.Duration
	log       zerolog.Logger
}

func NewReaperWorker(attempts *repository.AttemptRepository, age, interval time.Duration, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		attempts:  attempts,
		scheduler: gocron.NewScheduler(time.UTC),
		age:       age,
		interval:  interval,
		log:       log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start schedules the sweep and runs it in the background.
func (w *ReaperWorker) Start() {
	w.scheduler.Every(w.interval).Do(w.sweep)
	w.scheduler.StartAsync()
	w.log.Info().
		Dur("age", w.age).
		Dur("interval", w.interval).
		Msg("ReaperWorker started")
}

// Stop terminates the scheduler.
func (w *ReaperWorker) Stop() {
	w.scheduler.Stop()
}

func (w *ReaperWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reaped, err := w.attempts.ReapStale(ctx, w.age)
	if err != nil {
		w.log.Error().Err(err).Msg("Stale attempt sweep failed")
		return
	}
	if reaped > 0 {
		w.log.Warn().Int64("count", reaped).Msg("Reverted stale processing attempts")
	}
}
