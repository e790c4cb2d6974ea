package domain

import "time"

type MissionStatus string

const (
	MissionStatusPaymentScheduled MissionStatus = "PAYMENT_SCHEDULED"
	MissionStatusAwaitingStart    MissionStatus = "AWAITING_START"
	MissionStatusActive           MissionStatus = "ACTIVE"
	MissionStatusAwaitingEnd      MissionStatus = "AWAITING_END"
	MissionStatusCompleted        MissionStatus = "COMPLETED"
	MissionStatusCancelled        MissionStatus = "CANCELLED"
)

func (s MissionStatus) IsTerminal() bool {
	return s == MissionStatusCompleted || s == MissionStatusCancelled
}

// MissionAgreement is a multi-payment B2B engagement between a company and a
// detailer. Start and end each require confirmation from both parties; a
// one-sided confirmation is auto-resolved by the scheduler after a timeout.
type MissionAgreement struct {
	ID                   int64         `json:"id"`
	CompanyID            int64         `json:"company_id"`
	DetailerID           int64         `json:"detailer_id"`
	FinalPriceCents      int64         `json:"final_price_cents"`
	DepositPercentage    float64       `json:"deposit_percentage"`
	Currency             string        `json:"currency"`
	StartDate            string        `json:"start_date"` // yyyy-mm-dd
	Status               MissionStatus `json:"status"`
	CompanyStartConfirm  *time.Time    `json:"company_start_confirm,omitempty"`
	DetailerStartConfirm *time.Time    `json:"detailer_start_confirm,omitempty"`
	CompanyEndConfirm    *time.Time    `json:"company_end_confirm,omitempty"`
	DetailerEndConfirm   *time.Time    `json:"detailer_end_confirm,omitempty"`
	SEPAMandateRef       string        `json:"sepa_mandate_ref"`
	MandateValidated     bool          `json:"mandate_validated"`
	CreatedOn            time.Time     `json:"created_on"`
	UpdatedOn            time.Time     `json:"updated_on"`
}

type MissionPaymentType string

const (
	MissionPaymentTypeCommission  MissionPaymentType = "COMMISSION"
	MissionPaymentTypeDeposit     MissionPaymentType = "DEPOSIT"
	MissionPaymentTypeInstallment MissionPaymentType = "INSTALLMENT"
)

type MissionPaymentStatus string

const (
	MissionPaymentStatusPending    MissionPaymentStatus = "PENDING"
	MissionPaymentStatusAuthorized MissionPaymentStatus = "AUTHORIZED"
	MissionPaymentStatusProcessing MissionPaymentStatus = "PROCESSING"
	MissionPaymentStatusCaptured   MissionPaymentStatus = "CAPTURED"
	MissionPaymentStatusFailed     MissionPaymentStatus = "FAILED"
	MissionPaymentStatusCancelled  MissionPaymentStatus = "CANCELLED"
)

// MissionPayment is one scheduled money movement tied to an agreement. The
// status field is the single source of truth for whether the movement already
// succeeded; capture attempts check it before calling the processor.
type MissionPayment struct {
	ID            int64                `json:"id"`
	AgreementID   int64                `json:"agreement_id"`
	AmountCents   int64                `json:"amount_cents"`
	Type          MissionPaymentType   `json:"type"`
	ScheduledDate string               `json:"scheduled_date"` // yyyy-mm-dd
	Status        MissionPaymentStatus `json:"status"`
	PaymentRef    string               `json:"payment_ref"` // processor pre-auth reference
	RetryCount    int32                `json:"retry_count"`
	FailureReason string               `json:"failure_reason"`
	CreatedOn     time.Time            `json:"created_on"`
	UpdatedOn     time.Time            `json:"updated_on"`
}
