package jobs

import "context"

// AutoCaptureBookings captures pre-authorizations whose service ended past
// the grace period without the provider triggering the capture.
func (jr *JobRunner) AutoCaptureBookings() {
	jr.runWithLock("AutoCaptureBookings", func(ctx context.Context) {
		summary := jr.services.Booking.AutoCaptureDue(ctx, jr.config.Jobs.BatchLimit)
		logSummary("AutoCaptureBookings", summary)
	})
}

// AutoDeclineExpired declines and refunds bookings the provider never
// confirmed within the confirmation window.
func (jr *JobRunner) AutoDeclineExpired() {
	jr.runWithLock("AutoDeclineExpired", func(ctx context.Context) {
		summary := jr.services.Booking.AutoDeclineExpired(ctx, jr.config.Jobs.BatchLimit)
		logSummary("AutoDeclineExpired", summary)
	})
}

// TransferCompletedBookings pays providers out for completed, captured
// bookings that have no transfer reference yet.
func (jr *JobRunner) TransferCompletedBookings() {
	jr.runWithLock("TransferCompletedBookings", func(ctx context.Context) {
		summary := jr.services.Booking.TransferCompleted(ctx, jr.config.Jobs.BatchLimit)
		logSummary("TransferCompletedBookings", summary)
	})
}
