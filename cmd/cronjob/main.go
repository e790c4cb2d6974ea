package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/jobs"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository/postgres"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/scheduler"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'auto-capture-bookings', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BelDetailing settlement cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := postgres.VerifySchema(ctx, db); err != nil {
		logger.Error("Schema verification failed", "error", err)
		log.Fatalf("Schema verification failed: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	proc := processor.NewClient(cfg.Processor.BaseURL, cfg.Processor.APIKey)

	notifier, err := service.NewNotifier(ctx, cfg.Push, store.NotificationRepository, store.AccountRepository)
	if err != nil {
		log.Fatalf("Failed to initialize push notifier: %v", err)
	}

	mailer := service.NewOperatorMailer(cfg.Email)

	transferService := service.NewTransferRetryService(
		store.TransferRepository,
		store.BookingRepository,
		proc,
		mailer,
		cfg.Payments,
	)

	bookingService := service.NewBookingService(
		store.BookingRepository,
		store.CatalogRepository,
		store.AccountRepository,
		proc,
		transferService,
		notifier,
		cfg.Payments,
	)

	missionService := service.NewMissionService(
		store.MissionRepository,
		store.AccountRepository,
		proc,
		notifier,
		mailer,
		cfg.Payments,
	)

	jobServices := &jobs.Services{
		Booking:   bookingService,
		Mission:   missionService,
		Transfers: transferService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.JobLockRepository, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "auto-capture-bookings":
		jobRunner.AutoCaptureBookings()
	case "auto-decline-expired":
		jobRunner.AutoDeclineExpired()
	case "transfer-completed-bookings":
		jobRunner.TransferCompletedBookings()
	case "capture-mission-payments":
		jobRunner.CaptureMissionPayments()
	case "resolve-mission-timeouts":
		jobRunner.ResolveMissionTimeouts()
	case "retry-failed-transfers":
		jobRunner.RetryFailedTransfers()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - auto-capture-bookings\n")
		fmt.Printf("  - auto-decline-expired\n")
		fmt.Printf("  - transfer-completed-bookings\n")
		fmt.Printf("  - capture-mission-payments\n")
		fmt.Printf("  - resolve-mission-timeouts\n")
		fmt.Printf("  - retry-failed-transfers\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
