package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/config"
	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/logger"
	"github.com/memograph/memograph/internal/queue"
	"github.com/memograph/memograph/internal/telemetry"
	"github.com/memograph/memograph/internal/workers"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("poll_schedule", cfg.PollSchedule),
		zap.Int("claim_limit", cfg.ClaimLimit),
		zap.Strings("announce_agents", cfg.AnnounceAgents),
	)

	// Initialize tracing
	shutdownTracer, err := telemetry.Setup(context.Background(), cfg.OTELEnabled, cfg.OTELEndpoint)
	if err != nil {
		zapLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			zapLogger.Warn("Failed to shut down tracer", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	zapLogger.Info("Connected to database",
		zap.String("database_url", logger.RedactDSN(cfg.DatabaseURL)))

	// Initialize repositories
	reminderRepo := database.NewReminderRepository(db)
	announcementRepo := database.NewAnnouncementRepository(db)

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ")

	// Create announcer
	announcer := workers.NewAnnouncer(
		reminderRepo,
		announcementRepo,
		jobQueue,
		cfg.AnnounceAgents,
		cfg.ClaimLimit,
		zapLogger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule the due-reminder poll. Overlapping runs are harmless
	// because claiming skips locked rows, but SkipIfStillRunning keeps
	// a slow database from stacking polls.
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	_, err = scheduler.AddFunc(cfg.PollSchedule, func() {
		triggered, err := announcer.Poll(ctx)
		if err != nil {
			zapLogger.Error("Poll failed", zap.Error(err))
			return
		}
		if triggered > 0 {
			zapLogger.Info("Poll complete", zap.Int("triggered", triggered))
		}
	})
	if err != nil {
		zapLogger.Fatal("Invalid poll schedule",
			zap.String("schedule", cfg.PollSchedule),
			zap.Error(err))
	}

	scheduler.Start()
	zapLogger.Info("Worker started, polling for due reminders")

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	// Stop scheduling and wait for an in-flight poll to finish
	stopCtx := scheduler.Stop()
	cancel()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		zapLogger.Warn("Timed out waiting for in-flight poll")
	}

	zapLogger.Info("Worker stopped")
}
