package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/database"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/handler"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/logger"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/middleware"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/router"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/validator"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/worker"
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
		Msg("Starting AI Interviewer exam service")

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
	adminRepo := repository.NewAdminRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	adminService := service.NewAdminService(adminRepo, authService)
	questionService := service.NewQuestionService(questionRepo)
	sessionService := service.NewExamSessionService(sessionRepo, questionRepo, resultRepo, authService, cfg, log)

	runtime := service.NewExamRuntime(
		sessionRepo,
		service.NewRedisAnswerCache(rdb),
		service.NewRedisJobQueue(rdb),
		service.NewRedisPublisher(rdb),
		service.RuntimeOptions{
			AutoSubmitOnComplete: cfg.AutoSubmitOnComplete,
			FuzzyThreshold:       cfg.MCQFuzzyThreshold,
		},
		log,
	)
	monitorService := service.NewMonitorService(monitorRepo, runtime)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(adminService),
		Candidate:   handler.NewCandidateHandler(sessionService, runtime),
		ExamSession: handler.NewExamSessionHandler(sessionService, runtime),
		Question:    handler.NewQuestionHandler(questionService),
		WS:          handler.NewWSHandler(runtime, log, cfg.AllowedOrigins),
		Monitor:     handler.NewMonitorHandler(rdb, monitorService, log),
		System:      handler.NewSystemHandler(pool, rdb, runtime),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	autosaveWorker := worker.NewAutosaveWorker(pool, rdb, log)
	submissionWorker := worker.NewSubmissionWorker(pool, rdb, log)
	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	joinLimiter := middleware.NewRateLimiter(cfg.JoinRateLimit, time.Minute)

	for _, run := range []func(context.Context){
		autosaveWorker.Start,
		submissionWorker.Start,
		violationWorker.Start,
		joinLimiter.RunCleanup,
		func(ctx context.Context) { sessionService.RunExpirySweeper(ctx, cfg.ExpirySweepInterval) },
	} {
		workers.Add(1)
		go func() {
			defer workers.Done()
			run(workerCtx)
		}()
	}

	// ─── Resume Running Exams ─────────────────────────────────────────
	// Sessions left in progress by a previous process continue with their
	// remaining time before any candidate reconnects.
	if n, err := runtime.ResumeAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to resume running exams")
	} else if n > 0 {
		log.Info().Int("sessions", n).Msg("Resumed running exams")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, joinLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	// 2. Freeze running exams and record their remaining time.
	runtimeCtx, runtimeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	runtime.Shutdown(runtimeCtx)
	runtimeCancel()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	workersDone := make(chan struct{})
	go func() {
		workers.Wait()
		close(workersDone)
	}()
	select {
	case <-workersDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Workers did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
