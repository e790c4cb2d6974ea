package jobs

import (
	"context"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	locks    repository.JobLockRepository
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking   service.BookingService
	Mission   service.MissionService
	Transfers service.TransferRetryService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(locks repository.JobLockRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		locks:    locks,
		services: services,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	log := logger.WithJob(jobName)
	log.Info("Starting job")
	jobFunc(context.Background())
	log.Info("Job completed")
}

// runWithLock additionally serializes the job across instances through the
// database lock table. Losing the lock means another instance is already
// running this job; the run is skipped, not failed.
func (jr *JobRunner) runWithLock(jobName string, jobFunc func(ctx context.Context)) {
	jr.runWithRecovery(jobName, func(ctx context.Context) {
		holder := jr.config.Jobs.InstanceID
		ttl := time.Duration(jr.config.Jobs.LockTTLMinutes) * time.Minute

		acquired, err := jr.locks.Acquire(ctx, jobName, holder, ttl)
		if err != nil {
			logger.Error("Failed to acquire job lock", "job", jobName, "error", err)
			return
		}
		if !acquired {
			logger.Info("Job lock held by another instance, skipping", "job", jobName, "holder", holder)
			return
		}
		defer func() {
			if err := jr.locks.Release(ctx, jobName, holder); err != nil {
				logger.Error("Failed to release job lock", "job", jobName, "error", err)
			}
		}()

		jobFunc(ctx)
	})
}

func logSummary(jobName string, summary *service.BatchSummary) {
	log := logger.WithJob(jobName)
	log.Info("Batch finished",
		"captured", summary.Captured,
		"failed", summary.Failed,
		"skipped", summary.Skipped)
	for _, detail := range summary.Details {
		log.Debug("Batch detail", "detail", detail)
	}
}

// RunAll runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.AutoCaptureBookings()
	jr.AutoDeclineExpired()
	jr.TransferCompletedBookings()
	jr.CaptureMissionPayments()
	jr.ResolveMissionTimeouts()
	jr.RetryFailedTransfers()
}
