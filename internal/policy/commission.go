package policy

import "math"

// Split divides a gross amount into the platform commission and the provider
// net, rounding the commission to the cent with round-half-up. It is computed
// at transfer time so the rate in force at payout applies, and is idempotent
// under re-computation.
func Split(grossCents int64, rate float64) (commissionCents, netCents int64) {
	commissionCents = roundHalfUp(float64(grossCents) * rate)
	netCents = grossCents - commissionCents
	return commissionCents, netCents
}

// Share returns the given percentage of an amount, rounded to the cent with
// round-half-up. Used for the no-show withholding.
func Share(amountCents int64, percent float64) int64 {
	return roundHalfUp(float64(amountCents) * percent)
}

// roundHalfUp rounds to the nearest integer cent, halves away from zero.
func roundHalfUp(v float64) int64 {
	return int64(math.Round(v))
}
