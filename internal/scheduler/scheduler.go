package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/jobs"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Booking jobs
	_, err := s.cron.AddFunc(cfg.AutoCaptureBookings, s.jobs.AutoCaptureBookings)
	if err != nil {
		logger.Error("Failed to register AutoCaptureBookings job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.AutoDeclineExpired, s.jobs.AutoDeclineExpired)
	if err != nil {
		logger.Error("Failed to register AutoDeclineExpired job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.TransferCompletedBookings, s.jobs.TransferCompletedBookings)
	if err != nil {
		logger.Error("Failed to register TransferCompletedBookings job", "error", err)
	}

	// Mission jobs
	_, err = s.cron.AddFunc(cfg.CaptureMissionPayments, s.jobs.CaptureMissionPayments)
	if err != nil {
		logger.Error("Failed to register CaptureMissionPayments job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.ResolveMissionTimeouts, s.jobs.ResolveMissionTimeouts)
	if err != nil {
		logger.Error("Failed to register ResolveMissionTimeouts job", "error", err)
	}

	// Payout retry job
	_, err = s.cron.AddFunc(cfg.RetryFailedTransfers, s.jobs.RetryFailedTransfers)
	if err != nil {
		logger.Error("Failed to register RetryFailedTransfers job", "error", err)
	}

	logger.Info("All cron jobs registered successfully")
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
