package policy

import "time"

// RefundPolicy holds the time-windowed cancellation rules. Thresholds are
// configuration, never derived.
type RefundPolicy struct {
	FullRefundHours int     // cancelling earlier than this before service start refunds in full
	LateWindowHours int     // inside this window the transport fee is forfeited
	LateFeePercent  float64 // percentage of gross charged in the intermediate window
	MinLateFeeCents int64   // floor for the late-cancellation fee
}

// DefaultRefundPolicy returns the platform rules: full refund beyond 48h,
// gross minus max(5% of gross, 10 EUR) between 24h and 48h, gross minus the
// transport fee under 24h.
func DefaultRefundPolicy() RefundPolicy {
	return RefundPolicy{
		FullRefundHours: 48,
		LateWindowHours: 24,
		LateFeePercent:  0.05,
		MinLateFeeCents: 1000,
	}
}

// ComputeRefund returns the refundable amount in cents for a captured
// booking cancelled at `now`. It is pure and deterministic; callers bypass it
// entirely for pre-authorized (uncaptured) bookings, which are always voided
// in full.
func (p RefundPolicy) ComputeRefund(grossCents, transportFeeCents int64, serviceStart, now time.Time) int64 {
	hoursBefore := serviceStart.Sub(now).Hours()

	switch {
	case hoursBefore > float64(p.FullRefundHours):
		return grossCents
	case hoursBefore > float64(p.LateWindowHours):
		fee := roundHalfUp(float64(grossCents) * p.LateFeePercent)
		if fee < p.MinLateFeeCents {
			fee = p.MinLateFeeCents
		}
		refund := grossCents - fee
		if refund < 0 {
			refund = 0
		}
		return refund
	default:
		refund := grossCents - transportFeeCents
		if refund < 0 {
			refund = 0
		}
		return refund
	}
}
