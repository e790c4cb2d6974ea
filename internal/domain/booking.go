package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending           BookingStatus = "PENDING"
	BookingStatusPreauthorized     BookingStatus = "PREAUTHORIZED"
	BookingStatusConfirmed         BookingStatus = "CONFIRMED"
	BookingStatusStarted           BookingStatus = "STARTED"
	BookingStatusInProgress        BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted         BookingStatus = "COMPLETED"
	BookingStatusDeclined          BookingStatus = "DECLINED"
	BookingStatusCancelled         BookingStatus = "CANCELLED"
	BookingStatusRefunded          BookingStatus = "REFUNDED"
	BookingStatusPartiallyRefunded BookingStatus = "PARTIALLY_REFUNDED"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusPreauthorized     PaymentStatus = "PREAUTHORIZED"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusProcessing        PaymentStatus = "PROCESSING"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusTransferred       PaymentStatus = "TRANSFERRED"
	// RETAINED ends a cancellation whose computed refund is zero: the
	// platform keeps the full gross. Terminal, never transfer-due.
	PaymentStatusRetained PaymentStatus = "RETAINED"
)

// IsTerminal reports whether the booking can no longer change state.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusDeclined, BookingStatusCancelled,
		BookingStatusRefunded, BookingStatusPartiallyRefunded:
		return true
	}
	return false
}

// Booking is a single-service reservation between one customer and one
// provider. Money amounts are in euro cents. The commission rate is
// snapshotted at creation and never recomputed; the external transfer
// reference is set at most once, when the provider payout executes.
type Booking struct {
	ID                int64         `json:"id"`
	CustomerID        int64         `json:"customer_id"`
	ProviderID        int64         `json:"provider_id"`
	ServiceID         int64         `json:"service_id"`
	GrossAmountCents  int64         `json:"gross_amount_cents"`
	TransportFeeCents int64         `json:"transport_fee_cents"`
	Currency          string        `json:"currency"`
	ServiceDate       string        `json:"service_date"` // yyyy-mm-dd
	ServiceStart      time.Time     `json:"service_start"`
	ServiceEnd        time.Time     `json:"service_end"`
	Status            BookingStatus `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	PaymentRef        string        `json:"payment_ref"`             // processor pre-auth/charge reference
	TransferRef       *string       `json:"transfer_ref,omitempty"`  // processor payout reference, set once
	CommissionRate    float64       `json:"commission_rate"`         // snapshot at creation
	RefundedCents     int64         `json:"refunded_cents"`
	CancelReason      string        `json:"cancel_reason"`
	CreatedOn         time.Time     `json:"created_on"`
	UpdatedOn         time.Time     `json:"updated_on"`
}

// DetailingService is the provider-owned catalogue entry a booking is made
// against. Only the fields the payment engine needs are carried here.
type DetailingService struct {
	ID         int64   `json:"id"`
	ProviderID int64   `json:"provider_id"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"price_cents"`
	DurationMin int32  `json:"duration_min"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}
