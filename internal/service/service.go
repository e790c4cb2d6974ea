package service

import (
	"context"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
)

// BatchSummary is the structured result of a scheduler-driven batch
// operation. A single record's failure never aborts the batch; it is counted
// and detailed here instead.
type BatchSummary struct {
	Captured int      `json:"captured"`
	Failed   int      `json:"failed"`
	Skipped  int      `json:"skipped"`
	Details  []string `json:"details,omitempty"`
}

func (s *BatchSummary) capture(detail string) {
	s.Captured++
	s.Details = append(s.Details, detail)
}

func (s *BatchSummary) fail(detail string) {
	s.Failed++
	s.Details = append(s.Details, detail)
}

func (s *BatchSummary) skip(detail string) {
	s.Skipped++
	s.Details = append(s.Details, detail)
}

// CreateBookingRequest carries the inputs for a new reservation. A zero
// TransportFeeCents with ComputeTransportFee set has the fee derived from the
// distance between provider and customer.
type CreateBookingRequest struct {
	CustomerID          int64
	ServiceID           int64
	ServiceDate         string // yyyy-mm-dd
	ServiceStartHour    int
	TransportFeeCents   int64
	ComputeTransportFee bool
}

type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, providerID, bookingID int64) (*domain.Booking, error)
	DeclineBooking(ctx context.Context, providerID, bookingID int64, reason string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*domain.Booking, error)
	MarkNoShow(ctx context.Context, providerID, bookingID int64) (*domain.Booking, error)

	// Scheduler entry points. Each is idempotent and safe to invoke more
	// than once in a short window.
	AutoCaptureDue(ctx context.Context, limit int) *BatchSummary
	AutoDeclineExpired(ctx context.Context, limit int) *BatchSummary
	TransferCompleted(ctx context.Context, limit int) *BatchSummary
}

// SEPAMandateResult reports how a mandate validation resolved. When the
// processor refuses immediate off-session confirmation, OnSession is true and
// ClientSecret must be handed to the payer for explicit confirmation.
type SEPAMandateResult struct {
	Validated    bool
	OnSession    bool
	ClientSecret string
}

// DayOneResult reports a day-one capture. AlreadyCaptured distinguishes the
// idempotent no-op from a fresh capture.
type DayOneResult struct {
	Captured        []int64
	AlreadyCaptured []int64
	Failed          []int64
}

type MissionService interface {
	CaptureDayOne(ctx context.Context, agreementID int64) (*DayOneResult, error)
	CaptureDue(ctx context.Context, limit int) *BatchSummary
	ResolveConfirmationTimeouts(ctx context.Context) *BatchSummary
	ConfirmStart(ctx context.Context, agreementID int64, party domain.AccountRole) (*domain.MissionAgreement, error)
	ConfirmEnd(ctx context.Context, agreementID int64, party domain.AccountRole) (*domain.MissionAgreement, error)
	ValidateSEPAMandate(ctx context.Context, agreementID int64) (*SEPAMandateResult, error)
}

// RecordTransferParams snapshots everything needed to replay a payout.
type RecordTransferParams struct {
	BookingID      *int64
	AgreementID    *int64
	PaymentRef     string
	DestinationRef string
	AmountCents    int64
	Currency       string
	CommissionRate float64
	FailureReason  string
}

type TransferRetryService interface {
	RecordFailedTransfer(ctx context.Context, params RecordTransferParams) (*domain.FailedTransfer, error)
	RetryFailedTransfer(ctx context.Context, id int64) error
	RetryAllPending(ctx context.Context, limit int) *BatchSummary
}

// Notifier delivers fire-and-forget user notifications. Implementations must
// never let a delivery failure propagate into the financial transition that
// triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message string, attributes map[string]string)
}

// OperatorMailer reaches the human-operator escalation channel.
type OperatorMailer interface {
	SendOperatorAlert(ctx context.Context, subject, body string) error
}
