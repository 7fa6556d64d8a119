package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/codearena-labs/arena-go-api/internal/config"
	"github.com/codearena-labs/arena-go-api/internal/database"
	"github.com/codearena-labs/arena-go-api/internal/events"
	"github.com/codearena-labs/arena-go-api/internal/handler"
	"github.com/codearena-labs/arena-go-api/internal/judge"
	"github.com/codearena-labs/arena-go-api/internal/middleware"
	"github.com/codearena-labs/arena-go-api/internal/repository"
	"github.com/codearena-labs/arena-go-api/internal/router"
	"github.com/codearena-labs/arena-go-api/internal/service"
	"github.com/codearena-labs/arena-go-api/pkg/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var sink events.Sink = events.NopSink{}
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		sink = events.NewNATSSink(conn, cfg.EventSubjectBase, logger)
	}

	executor, err := buildExecutor(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build sandbox executor: %v", err)
	}

	sb := sandbox.New(executor, sandbox.Config{
		Root:   cfg.SandboxRoot,
		Logger: logger,
	})
	grader := judge.New(sb, logger, judge.Config{DefaultTimeout: cfg.ExecutionTimeout})

	validate := validator.New(validator.WithRequiredStructEnabled())

	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	contestRepo := repository.NewContestRepository(db)
	streakRepo := repository.NewStreakRepository(db)

	streakService := service.NewStreakService(streakRepo, sink, logger)
	problemService := service.NewProblemService(problemRepo, logger)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, grader, streakService, sink, validate, logger)
	contestService := service.NewContestService(contestRepo, problemRepo, submissionRepo, grader, streakService, sink, redisClient, validate, logger, service.ContestConfig{
		LeaderboardCacheTTL: cfg.LeaderboardCacheTTL,
	})

	problemHandler := handler.NewProblemHandler(problemService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	contestHandler := handler.NewContestHandler(contestService, logger)
	streakHandler := handler.NewStreakHandler(streakService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProblemHandler:    problemHandler,
		SubmissionHandler: submissionHandler,
		ContestHandler:    contestHandler,
		StreakHandler:     streakHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildExecutor(cfg config.Config, logger zerolog.Logger) (sandbox.Executor, error) {
	if cfg.SandboxBackend == "process" {
		return sandbox.NewProcessExecutor(logger), nil
	}

	return sandbox.NewDockerExecutor(sandbox.DockerConfig{
		Host:          cfg.DockerHost,
		MemoryLimitMB: int64(cfg.SandboxMemoryMB),
		CPUShares:     int64(cfg.SandboxCPUShares),
		Logger:        logger,
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
