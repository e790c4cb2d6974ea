package repository

import (
	"context"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
)

// State-transition preconditions are enforced optimistically: the Transition*
// methods perform a conditional update (WHERE status = expected) and report
// whether a row was affected. A false return means the record was already
// handled by a concurrent job run or API call and the caller should treat the
// operation as a no-op.

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error

	// TransitionPayment atomically moves payment_status from `from` to `to`,
	// optionally updating the booking status in the same write.
	TransitionPayment(ctx context.Context, id int64, from, to domain.PaymentStatus, status domain.BookingStatus) (bool, error)

	// SetTransferRef records the payout reference, only if none is set yet.
	// Enforces the at-most-once payout invariant.
	SetTransferRef(ctx context.Context, id int64, ref string) (bool, error)

	// ListCaptureDue returns preauthorized bookings whose service end time
	// is before the cutoff, oldest first.
	ListCaptureDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error)

	// ListConfirmationExpired returns preauthorized bookings created before
	// the cutoff that the provider never confirmed.
	ListConfirmationExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error)

	// ListTransferDue returns paid bookings past the cutoff with no payout
	// reference yet.
	ListTransferDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error)
}

type CatalogRepository interface {
	GetServiceByID(ctx context.Context, id int64) (*domain.DetailingService, error)
}

type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

type MissionRepository interface {
	GetAgreementByID(ctx context.Context, id int64) (*domain.MissionAgreement, error)
	TransitionAgreement(ctx context.Context, id int64, from, to domain.MissionStatus) (bool, error)

	// SetStartConfirm and SetEndConfirm stamp a single party's confirmation
	// column server-side, first write wins. Two parties confirming
	// concurrently must never clobber each other's timestamp, so the write
	// touches only the caller's column.
	SetStartConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error
	SetEndConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error

	// ListStartTimeouts returns AWAITING_START agreements where exactly one
	// party confirmed before the cutoff; ListEndTimeouts is the AWAITING_END
	// analogue.
	ListStartTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error)
	ListEndTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error)

	GetPaymentByID(ctx context.Context, id int64) (*domain.MissionPayment, error)
	ListPaymentsByAgreement(ctx context.Context, agreementID int64) ([]domain.MissionPayment, error)

	// ListDuePayments returns AUTHORIZED payments with scheduled_date <= the
	// given date, ascending by date.
	ListDuePayments(ctx context.Context, date string, limit int) ([]domain.MissionPayment, error)

	TransitionPayment(ctx context.Context, id int64, from, to domain.MissionPaymentStatus) (bool, error)
	RecordPaymentFailure(ctx context.Context, id int64, reason string, status domain.MissionPaymentStatus) error

	// CancelOpenPayments cancels all PENDING and AUTHORIZED payments of an
	// agreement, returning how many rows were affected.
	CancelOpenPayments(ctx context.Context, agreementID int64) (int64, error)

	SetMandateValidated(ctx context.Context, agreementID int64) error
}

type TransferRepository interface {
	Create(ctx context.Context, t *domain.FailedTransfer) error
	GetByID(ctx context.Context, id int64) (*domain.FailedTransfer, error)

	// ListPending returns pending records oldest first, up to limit.
	ListPending(ctx context.Context, limit int) ([]domain.FailedTransfer, error)

	// Transition gates concurrent retries: only one caller wins the
	// PENDING -> RETRYING move.
	Transition(ctx context.Context, id int64, from, to domain.TransferStatus) (bool, error)

	MarkSucceeded(ctx context.Context, id int64, transferRef string) error
	MarkFailedAttempt(ctx context.Context, id int64, reason string) error
	MarkFailedPermanently(ctx context.Context, id int64, reason string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

type JobLockRepository interface {
	// Acquire attempts to take the named lock for the given holder and TTL
	// via an atomic conditional write. Returns false when another live
	// holder owns it; that is not an error.
	Acquire(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error)

	// Release frees the lock if this holder still owns it.
	Release(ctx context.Context, jobName, holder string) error
}
