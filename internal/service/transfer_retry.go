package service

import (
	"context"
	"fmt"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/policy"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type transferRetryService struct {
	transferRepo repository.TransferRepository
	bookingRepo  repository.BookingRepository
	proc         processor.PaymentProcessor
	mailer       OperatorMailer
	maxRetries   int32
}

func NewTransferRetryService(
	transferRepo repository.TransferRepository,
	bookingRepo repository.BookingRepository,
	proc processor.PaymentProcessor,
	mailer OperatorMailer,
	payments config.PaymentsConfig,
) TransferRetryService {
	maxRetries := payments.MaxTransferRetries
	if maxRetries <= 0 {
		maxRetries = domain.DefaultMaxTransferRetries
	}
	return &transferRetryService{
		transferRepo: transferRepo,
		bookingRepo:  bookingRepo,
		proc:         proc,
		mailer:       mailer,
		maxRetries:   maxRetries,
	}
}

// RecordFailedTransfer snapshots the commission split at recording time so
// every retry replays the exact original movement even if rates change later.
func (s *transferRetryService) RecordFailedTransfer(ctx context.Context, params RecordTransferParams) (*domain.FailedTransfer, error) {
	if params.PaymentRef == "" {
		return nil, &domain.ValidationError{Field: "payment_ref", Reason: "required"}
	}
	if params.DestinationRef == "" {
		return nil, &domain.ValidationError{Field: "destination_ref", Reason: "required"}
	}
	if params.AmountCents <= 0 {
		return nil, &domain.ValidationError{Field: "amount_cents", Reason: "must be positive"}
	}

	commission, net := policy.Split(params.AmountCents, params.CommissionRate)
	t := &domain.FailedTransfer{
		BookingID:       params.BookingID,
		AgreementID:     params.AgreementID,
		PaymentRef:      params.PaymentRef,
		DestinationRef:  params.DestinationRef,
		AmountCents:     params.AmountCents,
		Currency:        params.Currency,
		CommissionRate:  params.CommissionRate,
		CommissionCents: commission,
		NetCents:        net,
		Status:          domain.TransferStatusPending,
		RetryCount:      0,
		MaxRetries:      s.maxRetries,
		FailureReason:   params.FailureReason,
	}
	if err := s.transferRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	logger.Warn("Recorded failed payout for retry",
		"transfer_id", t.ID,
		"net_cents", t.NetCents,
		"destination", t.DestinationRef,
		"reason", t.FailureReason)
	return t, nil
}

func (s *transferRetryService) RetryFailedTransfer(ctx context.Context, id int64) error {
	t, err := s.transferRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == domain.TransferStatusSucceeded || t.Status == domain.TransferStatusFailedPermanently {
		return &domain.PreconditionError{Entity: "failed_transfer", ID: t.ID, Expected: string(domain.TransferStatusPending), Actual: string(t.Status)}
	}

	// Retry budget is checked before any processor call so an exhausted
	// record fails fast and escalates instead of hammering the processor.
	if t.RetryCount >= t.MaxRetries {
		if err := s.transferRepo.MarkFailedPermanently(ctx, t.ID, t.FailureReason); err != nil {
			return err
		}
		s.escalate(ctx, t)
		return &domain.MaxRetriesExceededError{TransferID: t.ID, Retries: t.RetryCount}
	}

	ok, err := s.transferRepo.Transition(ctx, t.ID, domain.TransferStatusPending, domain.TransferStatusRetrying)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.PreconditionError{Entity: "failed_transfer", ID: t.ID, Expected: string(domain.TransferStatusPending), Actual: "concurrently retried"}
	}

	attempt := t.RetryCount + 1
	idemKey := processor.IdempotencyKey("transfer-retry", t.ID, attempt)
	ref, err := s.proc.Transfer(ctx, t.NetCents, t.Currency, t.DestinationRef, t.PaymentRef, idemKey)
	if err != nil {
		if recErr := s.transferRepo.MarkFailedAttempt(ctx, t.ID, err.Error()); recErr != nil {
			logger.Error("Failed to record retry attempt", "transfer_id", t.ID, "error", recErr)
		}
		if attempt >= t.MaxRetries {
			if permErr := s.transferRepo.MarkFailedPermanently(ctx, t.ID, err.Error()); permErr != nil {
				logger.Error("Failed to mark transfer permanently failed", "transfer_id", t.ID, "error", permErr)
			}
			s.escalate(ctx, t)
			return &domain.MaxRetriesExceededError{TransferID: t.ID, Retries: attempt}
		}
		return err
	}

	if err := s.transferRepo.MarkSucceeded(ctx, t.ID, ref); err != nil {
		return err
	}
	if t.BookingID != nil {
		if _, err := s.bookingRepo.SetTransferRef(ctx, *t.BookingID, ref); err != nil {
			logger.Error("Failed to stamp transfer ref on booking", "booking_id", *t.BookingID, "error", err)
		}
	}
	logger.Info("Payout retry succeeded", "transfer_id", t.ID, "transfer_ref", ref, "attempt", attempt)
	return nil
}

func (s *transferRetryService) RetryAllPending(ctx context.Context, limit int) *BatchSummary {
	summary := &BatchSummary{}

	pending, err := s.transferRepo.ListPending(ctx, limit)
	if err != nil {
		logger.Error("Failed to list pending transfers", "error", err)
		summary.fail(fmt.Sprintf("list: %v", err))
		return summary
	}

	for _, t := range pending {
		err := s.RetryFailedTransfer(ctx, t.ID)
		switch {
		case err == nil:
			summary.capture(fmt.Sprintf("transfer %d: payout succeeded", t.ID))
		case domain.IsPrecondition(err):
			summary.skip(fmt.Sprintf("transfer %d: %v", t.ID, err))
		default:
			summary.fail(fmt.Sprintf("transfer %d: %v", t.ID, err))
		}
	}
	return summary
}

func (s *transferRetryService) escalate(ctx context.Context, t *domain.FailedTransfer) {
	logger.Error("Payout exhausted its retries, escalating to operator",
		"transfer_id", t.ID,
		"net_cents", t.NetCents,
		"destination", t.DestinationRef)
	if s.mailer == nil {
		return
	}
	subject := fmt.Sprintf("Payout %d requires manual intervention", t.ID)
	body := fmt.Sprintf(
		"Payout %d to %s for %d %s (net of %d commission) failed %d times and will not be retried automatically.\nLast failure: %s",
		t.ID, t.DestinationRef, t.NetCents, t.Currency, t.CommissionCents, t.RetryCount, t.FailureReason)
	if err := s.mailer.SendOperatorAlert(ctx, subject, body); err != nil {
		logger.Error("Operator alert failed", "transfer_id", t.ID, "error", err)
	}
}
