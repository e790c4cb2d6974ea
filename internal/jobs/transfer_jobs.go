package jobs

import "context"

// RetryFailedTransfers replays pending provider payouts, oldest first.
func (jr *JobRunner) RetryFailedTransfers() {
	jr.runWithLock("RetryFailedTransfers", func(ctx context.Context) {
		summary := jr.services.Transfers.RetryAllPending(ctx, jr.config.Jobs.BatchLimit)
		logSummary("RetryFailedTransfers", summary)
	})
}
