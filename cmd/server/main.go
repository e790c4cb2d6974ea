package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	httpapi "github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/api/http"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository/postgres"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BelDetailing settlement backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test database connection and required schema
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
		logger.Error("Failed to initialize push notifier", "error", err)
		log.Fatalf("Failed to initialize push notifier: %v", err)
	}

	mailer := service.NewOperatorMailer(cfg.Email)

	transferSvc := service.NewTransferRetryService(
		store.TransferRepository,
		store.BookingRepository,
		proc,
		mailer,
		cfg.Payments,
	)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CatalogRepository,
		store.AccountRepository,
		proc,
		transferSvc,
		notifier,
		cfg.Payments,
	)
	missionSvc := service.NewMissionService(
		store.MissionRepository,
		store.AccountRepository,
		proc,
		notifier,
		mailer,
		cfg.Payments,
	)

	// Set up HTTP server
	router := mux.NewRouter()
	handler := httpapi.NewHandler(bookingSvc, missionSvc, transferSvc, cfg.Jobs.BatchLimit)
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
