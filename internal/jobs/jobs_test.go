package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/service"
)

type mockLockRepo struct{ mock.Mock }

func (m *mockLockRepo) Acquire(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, jobName, holder, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLockRepo) Release(ctx context.Context, jobName, holder string) error {
	args := m.Called(ctx, jobName, holder)
	return args.Error(0)
}

type stubBookingService struct {
	service.BookingService
	captureCalls int
}

func (s *stubBookingService) AutoCaptureDue(ctx context.Context, limit int) *service.BatchSummary {
	s.captureCalls++
	return &service.BatchSummary{Captured: 2}
}

type stubTransferService struct {
	service.TransferRetryService
	retryCalls int
}

func (s *stubTransferService) RetryAllPending(ctx context.Context, limit int) *service.BatchSummary {
	s.retryCalls++
	return &service.BatchSummary{}
}

type panickingMissionService struct {
	service.MissionService
}

func (s *panickingMissionService) CaptureDue(ctx context.Context, limit int) *service.BatchSummary {
	panic("boom")
}

func testJobsConfig() *config.Config {
	return &config.Config{
		Jobs: config.JobsConfig{
			BatchLimit:     100,
			LockTTLMinutes: 10,
			InstanceID:     "test-instance",
		},
	}
}

func TestJobRunner_RunsUnderLock(t *testing.T) {
	locks := new(mockLockRepo)
	booking := &stubBookingService{}
	runner := NewJobRunner(locks, &Services{Booking: booking}, testJobsConfig())

	locks.On("Acquire", mock.Anything, "AutoCaptureBookings", "test-instance", 10*time.Minute).Return(true, nil)
	locks.On("Release", mock.Anything, "AutoCaptureBookings", "test-instance").Return(nil)

	runner.AutoCaptureBookings()

	assert.Equal(t, 1, booking.captureCalls)
	locks.AssertExpectations(t)
}

func TestJobRunner_SkipsWhenLockHeld(t *testing.T) {
	locks := new(mockLockRepo)
	booking := &stubBookingService{}
	runner := NewJobRunner(locks, &Services{Booking: booking}, testJobsConfig())

	locks.On("Acquire", mock.Anything, "AutoCaptureBookings", "test-instance", 10*time.Minute).Return(false, nil)

	runner.AutoCaptureBookings()

	assert.Equal(t, 0, booking.captureCalls)
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobRunner_SkipsOnLockError(t *testing.T) {
	locks := new(mockLockRepo)
	transfers := &stubTransferService{}
	runner := NewJobRunner(locks, &Services{Transfers: transfers}, testJobsConfig())

	locks.On("Acquire", mock.Anything, "RetryFailedTransfers", "test-instance", 10*time.Minute).
		Return(false, errors.New("connection reset"))

	runner.RetryFailedTransfers()

	assert.Equal(t, 0, transfers.retryCalls)
}

func TestJobRunner_RecoversFromPanic(t *testing.T) {
	locks := new(mockLockRepo)
	runner := NewJobRunner(locks, &Services{Mission: &panickingMissionService{}}, testJobsConfig())

	locks.On("Acquire", mock.Anything, "CaptureMissionPayments", "test-instance", 10*time.Minute).Return(true, nil)
	locks.On("Release", mock.Anything, "CaptureMissionPayments", "test-instance").Return(nil)

	assert.NotPanics(t, func() {
		runner.CaptureMissionPayments()
	})
	locks.AssertExpectations(t)
}
