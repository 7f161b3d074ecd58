package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/database"
	"github.com/learnora/learnora-backend/internal/handler"
	"github.com/learnora/learnora-backend/internal/logger"
	"github.com/learnora/learnora-backend/internal/repository"
	"github.com/learnora/learnora-backend/internal/router"
	"github.com/learnora/learnora-backend/internal/service"
	"github.com/learnora/learnora-backend/internal/validator"
	"github.com/learnora/learnora-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Learnora Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	auditSink := service.NewRedisAuditSink(rdb, log)
	authService := service.NewAuthService(cfg, userRepo)
	courseService := service.NewCourseService(courseRepo)
	orderService := service.NewOrderService(enrollmentRepo, courseRepo, auditSink, log)
	progressService := service.NewProgressService(progressRepo, courseRepo, quizRepo, enrollmentRepo, rdb, auditSink, log)
	quizService := service.NewQuizService(quizRepo, attemptRepo, enrollmentRepo, courseRepo, progressRepo, rdb, auditSink, log)
	attemptService := service.NewAttemptService(quizRepo, attemptRepo, enrollmentRepo, progressRepo, progressService, auditSink, log)
	reviewService := service.NewReviewService(quizRepo, attemptRepo, progressService, auditSink, log)
	adminService := service.NewAdminService(userRepo, auditRepo, auditSink, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Course:         handler.NewCourseHandler(courseService),
		Order:          handler.NewOrderHandler(orderService),
		InstructorQuiz: handler.NewInstructorQuizHandler(quizService, reviewService),
		StudentQuiz:    handler.NewStudentQuizHandler(quizService, attemptService),
		Progress:       handler.NewProgressHandler(progressService),
		Admin:          handler.NewAdminHandler(adminService),
		WS:             handler.NewWSHandler(rdb, progressService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(auditRepo, rdb, log)
	go auditWorker.Start(workerCtx)

	reaperWorker := worker.NewReaperWorker(attemptRepo, cfg.AttemptReaperAge, cfg.AttemptReaperInterval, log)
	reaperWorker.Start()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	reaperWorker.Stop()
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
