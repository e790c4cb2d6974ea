package jobs

import "context"

// CaptureMissionPayments captures authorized mission payments whose
// scheduled date has arrived.
func (jr *JobRunner) CaptureMissionPayments() {
	jr.runWithLock("CaptureMissionPayments", func(ctx context.Context) {
		summary := jr.services.Mission.CaptureDue(ctx, jr.config.Jobs.BatchLimit)
		logSummary("CaptureMissionPayments", summary)
	})
}

// ResolveMissionTimeouts resolves agreements stuck on a one-sided start or
// end confirmation.
func (jr *JobRunner) ResolveMissionTimeouts() {
	jr.runWithLock("ResolveMissionTimeouts", func(ctx context.Context) {
		summary := jr.services.Mission.ResolveConfirmationTimeouts(ctx)
		logSummary("ResolveMissionTimeouts", summary)
	})
}
