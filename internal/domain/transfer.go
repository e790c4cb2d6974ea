package domain

import "time"

type TransferStatus string

const (
	TransferStatusPending           TransferStatus = "PENDING"
	TransferStatusRetrying          TransferStatus = "RETRYING"
	TransferStatusSucceeded         TransferStatus = "SUCCEEDED"
	TransferStatusFailedPermanently TransferStatus = "FAILED_PERMANENTLY"
)

// DefaultMaxTransferRetries is the retry ceiling applied to new records.
const DefaultMaxTransferRetries = 3

// FailedTransfer is the durable record of a provider/detailer payout that
// failed. Commission and net amounts are snapshotted at recording time so a
// retry replays the exact original movement. Once the status reaches
// SUCCEEDED or FAILED_PERMANENTLY no further retries are scheduled; the
// PENDING -> RETRYING transition gates concurrent retries of the same record.
type FailedTransfer struct {
	ID              int64          `json:"id"`
	BookingID       *int64         `json:"booking_id,omitempty"`
	AgreementID     *int64         `json:"agreement_id,omitempty"`
	PaymentRef      string         `json:"payment_ref"`     // source charge on the processor
	DestinationRef  string         `json:"destination_ref"` // connected account to pay out to
	AmountCents     int64          `json:"amount_cents"`    // gross amount of the transfer
	Currency        string         `json:"currency"`
	CommissionRate  float64        `json:"commission_rate"`
	CommissionCents int64          `json:"commission_cents"`
	NetCents        int64          `json:"net_cents"`
	Status          TransferStatus `json:"status"`
	RetryCount      int32          `json:"retry_count"`
	MaxRetries      int32          `json:"max_retries"`
	FailureReason   string         `json:"failure_reason"`
	TransferRef     *string        `json:"transfer_ref,omitempty"` // set when a retry succeeds
	CreatedOn       time.Time      `json:"created_on"`
	UpdatedOn       time.Time      `json:"updated_on"`
}
