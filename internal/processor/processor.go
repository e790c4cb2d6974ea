package processor

import (
	"context"
	"fmt"
)

// Status is the processor-native state of a payment, refund or transfer.
type Status string

const (
	StatusRequiresCapture      Status = "requires_capture"
	StatusRequiresAction       Status = "requires_action"
	StatusRequiresConfirmation Status = "requires_confirmation"
	StatusProcessing           Status = "processing"
	StatusSucceeded            Status = "succeeded"
	StatusCanceled             Status = "canceled"
	StatusFailed               Status = "failed"
)

// Capturable reports whether a pre-authorization can still be captured.
func (s Status) Capturable() bool {
	return s == StatusRequiresCapture
}

// Authorization is the result of a pre-auth or off-session payment attempt.
// ClientSecret is only populated when the payer must confirm on-session.
type Authorization struct {
	Ref          string
	Status       Status
	ClientSecret string
}

// PaymentProcessor is the narrow interface the settlement engine consumes.
// Every mutating call takes an idempotency key so a retried request with the
// same key never double-executes on the processor side. Implementations
// classify failures as ProcessorTransientError or ProcessorPermanentError
// from the domain package; a timeout is an unknown outcome, not a failure.
type PaymentProcessor interface {
	// Authorize places a hold on the payer's instrument without moving funds.
	Authorize(ctx context.Context, amountCents int64, currency, payerRef, idemKey string) (*Authorization, error)

	// Capture converts a pre-authorization into an actual funds movement.
	Capture(ctx context.Context, ref, idemKey string) (Status, error)

	// Refund reverses a captured payment. A nil amount means full refund.
	Refund(ctx context.Context, ref string, amountCents *int64, idemKey string) (Status, error)

	// Transfer moves captured funds from the platform's pooled account to a
	// connected provider/detailer account.
	Transfer(ctx context.Context, amountCents int64, currency, destinationRef, sourceChargeRef, idemKey string) (string, error)

	// RetrieveStatus returns the current processor-side state of a reference.
	RetrieveStatus(ctx context.Context, ref string) (Status, error)

	// CreateOffSessionPayment attempts an unattended charge against a SEPA
	// mandate. Used to validate a mandate with a 1-unit test payment.
	CreateOffSessionPayment(ctx context.Context, amountCents int64, currency, payerRef, mandateRef, idemKey string) (*Authorization, error)
}

// IdempotencyKey derives the key for a mutating call from the local record
// identity plus a monotonically increasing attempt counter.
func IdempotencyKey(entity string, id int64, attempt int32) string {
	return fmt.Sprintf("%s-%d-attempt-%d", entity, id, attempt)
}
