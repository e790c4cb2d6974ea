package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/policy"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	catalogRepo  repository.CatalogRepository
	accountRepo  repository.AccountRepository
	proc         processor.PaymentProcessor
	transfers    TransferRetryService
	notifier     Notifier
	refundPolicy policy.RefundPolicy
	payments     config.PaymentsConfig
	now          func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	catalogRepo repository.CatalogRepository,
	accountRepo repository.AccountRepository,
	proc processor.PaymentProcessor,
	transfers TransferRetryService,
	notifier Notifier,
	payments config.PaymentsConfig,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		catalogRepo: catalogRepo,
		accountRepo: accountRepo,
		proc:        proc,
		transfers:   transfers,
		notifier:    notifier,
		refundPolicy: policy.RefundPolicy{
			FullRefundHours: payments.Refund.FullRefundHours,
			LateWindowHours: payments.Refund.LateWindowHours,
			LateFeePercent:  payments.Refund.LateFeePercent,
			MinLateFeeCents: payments.Refund.MinLateFeeCents,
		},
		payments: payments,
		now:      time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	svc, err := s.catalogRepo.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := s.accountRepo.GetByID(ctx, svc.ProviderID)
	if err != nil {
		return nil, domain.ErrProviderNotFound
	}
	customer, err := s.accountRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, domain.ErrCustomerNotFound
	}

	day, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		return nil, &domain.ValidationError{Field: "service_date", Reason: "expected yyyy-mm-dd"}
	}
	if req.ServiceStartHour < 0 || req.ServiceStartHour > 23 {
		return nil, &domain.ValidationError{Field: "service_start_hour", Reason: "must be between 0 and 23"}
	}
	serviceStart := day.Add(time.Duration(req.ServiceStartHour) * time.Hour)
	serviceEnd := serviceStart.Add(time.Duration(svc.DurationMin) * time.Minute)

	transportFee := req.TransportFeeCents
	if transportFee == 0 && req.ComputeTransportFee {
		transportFee = policy.TransportFee(
			provider.Latitude, provider.Longitude,
			customer.Latitude, customer.Longitude,
			s.payments.TransportFeePerKmCents,
		)
	}
	gross := svc.PriceCents + transportFee

	auth, err := s.proc.Authorize(ctx, gross, s.payments.Currency, customer.PayerRef, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("pre-authorization failed: %w", err)
	}

	booking := &domain.Booking{
		CustomerID:        customer.ID,
		ProviderID:        provider.ID,
		ServiceID:         svc.ID,
		GrossAmountCents:  gross,
		TransportFeeCents: transportFee,
		Currency:          s.payments.Currency,
		ServiceDate:       req.ServiceDate,
		ServiceStart:      serviceStart,
		ServiceEnd:        serviceEnd,
		Status:            domain.BookingStatusPreauthorized,
		PaymentStatus:     domain.PaymentStatusPreauthorized,
		PaymentRef:        auth.Ref,
		CommissionRate:    s.payments.BookingCommissionRate,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, provider.ID, "New booking request",
		fmt.Sprintf("%s booked %s on %s", customer.Name, svc.Name, req.ServiceDate),
		map[string]string{"type": "BOOKING_REQUEST", "booking_id": fmt.Sprintf("%d", booking.ID)})

	return booking, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, providerID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, &domain.ValidationError{Field: "provider_id", Reason: "booking belongs to another provider"}
	}
	if b.PaymentStatus != domain.PaymentStatusPreauthorized {
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: string(domain.PaymentStatusPreauthorized), Actual: string(b.PaymentStatus)}
	}

	// Past the confirmation window the booking is declined and refunded in
	// full instead; the timeout policy, not a provider error.
	window := time.Duration(s.payments.ConfirmationWindowHours) * time.Hour
	if s.now().Sub(b.CreatedOn) > window {
		if err := s.declineAndRefund(ctx, b, "confirmation window expired"); err != nil {
			return nil, err
		}
		return s.bookingRepo.GetByID(ctx, bookingID)
	}

	idemKey := processor.IdempotencyKey("booking-capture", b.ID, 1)
	if _, err := s.proc.Capture(ctx, b.PaymentRef, idemKey); err != nil {
		return nil, fmt.Errorf("capture failed for booking %d: %w", b.ID, err)
	}

	ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, domain.PaymentStatusPreauthorized, domain.PaymentStatusPaid, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: string(domain.PaymentStatusPreauthorized), Actual: "already transitioned"}
	}

	s.notifier.Notify(ctx, b.CustomerID, "Booking confirmed",
		fmt.Sprintf("Your booking for %s is confirmed and your payment was captured", b.ServiceDate),
		map[string]string{"type": "BOOKING_CONFIRMED", "booking_id": fmt.Sprintf("%d", b.ID)})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) DeclineBooking(ctx context.Context, providerID, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, &domain.ValidationError{Field: "provider_id", Reason: "booking belongs to another provider"}
	}
	// Declining is a pre-capture act. Once the payment is captured the
	// provider goes through the cancel path and its refund policy instead.
	if b.PaymentStatus != domain.PaymentStatusPending && b.PaymentStatus != domain.PaymentStatusPreauthorized {
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: "pending or preauthorized", Actual: string(b.PaymentStatus)}
	}

	// A provider-side rejection never penalizes the customer: full refund
	// whenever a pre-authorization exists.
	if err := s.declineAndRefund(ctx, b, reason); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// declineAndRefund voids or fully refunds the pre-authorization and moves the
// booking to DECLINED/REFUNDED.
func (s *bookingService) declineAndRefund(ctx context.Context, b *domain.Booking, reason string) error {
	if b.PaymentRef != "" {
		idemKey := processor.IdempotencyKey("booking-refund", b.ID, 1)
		if _, err := s.proc.Refund(ctx, b.PaymentRef, nil, idemKey); err != nil {
			return fmt.Errorf("refund failed for booking %d: %w", b.ID, err)
		}
	}

	ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, b.PaymentStatus, domain.PaymentStatusRefunded, domain.BookingStatusDeclined)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Booking already transitioned during decline", "booking_id", b.ID)
		return nil
	}
	b.CancelReason = reason
	b.Status = domain.BookingStatusDeclined
	b.PaymentStatus = domain.PaymentStatusRefunded
	b.RefundedCents = b.GrossAmountCents
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return err
	}

	s.notifier.Notify(ctx, b.CustomerID, "Booking declined",
		"Your booking was declined and your payment fully refunded",
		map[string]string{"type": "BOOKING_DECLINED", "booking_id": fmt.Sprintf("%d", b.ID)})
	return nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != b.CustomerID && userID != b.ProviderID {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "not a party to this booking"}
	}
	if b.Status.IsTerminal() {
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: "non-terminal", Actual: string(b.Status)}
	}

	switch b.PaymentStatus {
	case domain.PaymentStatusPreauthorized:
		// No funds have moved: the policy is bypassed and the hold voided in
		// full regardless of time-to-service.
		idemKey := processor.IdempotencyKey("booking-refund", b.ID, 1)
		if _, err := s.proc.Refund(ctx, b.PaymentRef, nil, idemKey); err != nil {
			return nil, fmt.Errorf("void failed for booking %d: %w", b.ID, err)
		}
		ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, domain.PaymentStatusPreauthorized, domain.PaymentStatusRefunded, domain.BookingStatusCancelled)
		if err != nil {
			return nil, err
		}
		if ok {
			b.Status = domain.BookingStatusCancelled
			b.PaymentStatus = domain.PaymentStatusRefunded
			b.RefundedCents = b.GrossAmountCents
			b.CancelReason = reason
			if err := s.bookingRepo.Update(ctx, b); err != nil {
				return nil, err
			}
		}

	case domain.PaymentStatusPaid:
		refund := s.refundPolicy.ComputeRefund(b.GrossAmountCents, b.TransportFeeCents, b.ServiceStart, s.now())
		if err := s.refundCaptured(ctx, b, refund, reason); err != nil {
			return nil, err
		}

	default:
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: "preauthorized or paid", Actual: string(b.PaymentStatus)}
	}

	counterpart := b.ProviderID
	if userID == b.ProviderID {
		counterpart = b.CustomerID
	}
	s.notifier.Notify(ctx, counterpart, "Booking cancelled",
		fmt.Sprintf("Booking for %s was cancelled", b.ServiceDate),
		map[string]string{"type": "BOOKING_CANCELLED", "booking_id": fmt.Sprintf("%d", b.ID)})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// refundCaptured refunds the given amount of a captured payment and settles
// the booking into the matching terminal state.
func (s *bookingService) refundCaptured(ctx context.Context, b *domain.Booking, refundCents int64, reason string) error {
	target := domain.PaymentStatusPartiallyRefunded
	status := domain.BookingStatusPartiallyRefunded
	if refundCents >= b.GrossAmountCents {
		target = domain.PaymentStatusRefunded
		status = domain.BookingStatusRefunded
	}

	if refundCents > 0 {
		idemKey := processor.IdempotencyKey("booking-refund", b.ID, 1)
		var amount *int64
		if refundCents < b.GrossAmountCents {
			amount = &refundCents
		}
		if _, err := s.proc.Refund(ctx, b.PaymentRef, amount, idemKey); err != nil {
			return fmt.Errorf("refund failed for booking %d: %w", b.ID, err)
		}
	} else {
		// Nothing comes back to the customer; the withheld fees belong to
		// the platform. Leaving the payment PAID here would match the
		// transfer-due predicate and pay the provider for a cancelled
		// service.
		target = domain.PaymentStatusRetained
		status = domain.BookingStatusCancelled
	}

	ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, domain.PaymentStatusPaid, target, status)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Booking already transitioned during refund", "booking_id", b.ID)
		return nil
	}
	b.Status = status
	b.PaymentStatus = target
	b.RefundedCents = refundCents
	b.CancelReason = reason
	return s.bookingRepo.Update(ctx, b)
}

func (s *bookingService) MarkNoShow(ctx context.Context, providerID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, &domain.ValidationError{Field: "provider_id", Reason: "booking belongs to another provider"}
	}
	if b.Status != domain.BookingStatusConfirmed || b.PaymentStatus != domain.PaymentStatusPaid {
		return nil, &domain.PreconditionError{Entity: "booking", ID: b.ID, Expected: "confirmed and paid", Actual: fmt.Sprintf("%s/%s", b.Status, b.PaymentStatus)}
	}

	provider, err := s.accountRepo.GetByID(ctx, b.ProviderID)
	if err != nil {
		return nil, err
	}

	// The provider keeps a fraction of the gross as a no-show payment, net
	// of commission; the customer gets the rest back.
	withheld := policy.Share(b.GrossAmountCents, s.payments.NoShowWithholdPercent)
	refund := b.GrossAmountCents - withheld
	if err := s.refundCaptured(ctx, b, refund, "customer no-show"); err != nil {
		return nil, err
	}

	_, net := policy.Split(withheld, b.CommissionRate)
	idemKey := processor.IdempotencyKey("booking-transfer", b.ID, 1)
	ref, err := s.proc.Transfer(ctx, net, b.Currency, provider.DestinationRef, b.PaymentRef, idemKey)
	if err != nil {
		logger.Error("No-show payout failed, recording for retry", "booking_id", b.ID, "error", err)
		if _, recErr := s.transfers.RecordFailedTransfer(ctx, RecordTransferParams{
			BookingID:      &b.ID,
			PaymentRef:     b.PaymentRef,
			DestinationRef: provider.DestinationRef,
			AmountCents:    withheld,
			Currency:       b.Currency,
			CommissionRate: b.CommissionRate,
			FailureReason:  err.Error(),
		}); recErr != nil {
			logger.Error("Failed to record failed transfer", "booking_id", b.ID, "error", recErr)
		}
	} else {
		if _, err := s.bookingRepo.SetTransferRef(ctx, b.ID, ref); err != nil {
			logger.Error("Failed to store transfer reference", "booking_id", b.ID, "error", err)
		}
	}

	s.notifier.Notify(ctx, b.CustomerID, "No-show recorded",
		"You were marked as a no-show; part of your payment was withheld",
		map[string]string{"type": "BOOKING_NO_SHOW", "booking_id": fmt.Sprintf("%d", b.ID)})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) AutoCaptureDue(ctx context.Context, limit int) *BatchSummary {
	summary := &BatchSummary{}
	cutoff := s.now().Add(-time.Duration(s.payments.CaptureGraceHours) * time.Hour)

	bookings, err := s.bookingRepo.ListCaptureDue(ctx, cutoff, limit)
	if err != nil {
		logger.Error("Failed to list capture-due bookings", "error", err)
		summary.fail(fmt.Sprintf("list: %v", err))
		return summary
	}

	for _, b := range bookings {
		// The hold may have expired or been released out-of-band; never
		// force a capture the processor no longer allows.
		status, err := s.proc.RetrieveStatus(ctx, b.PaymentRef)
		if err != nil {
			summary.fail(fmt.Sprintf("booking %d: status check: %v", b.ID, err))
			continue
		}
		if status == processor.StatusSucceeded {
			// A previous attempt captured on the processor side but its
			// outcome was lost before the record write. Reconcile instead of
			// skipping the booking forever.
			ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, domain.PaymentStatusPreauthorized, domain.PaymentStatusPaid, domain.BookingStatusConfirmed)
			if err != nil {
				summary.fail(fmt.Sprintf("booking %d: reconcile: %v", b.ID, err))
				continue
			}
			if !ok {
				summary.skip(fmt.Sprintf("booking %d: already transitioned", b.ID))
				continue
			}
			summary.capture(fmt.Sprintf("booking %d: reconciled already-captured charge", b.ID))
			continue
		}
		if !status.Capturable() {
			summary.skip(fmt.Sprintf("booking %d: authorization is %s, not capturable", b.ID, status))
			continue
		}

		idemKey := processor.IdempotencyKey("booking-capture", b.ID, 1)
		if _, err := s.proc.Capture(ctx, b.PaymentRef, idemKey); err != nil {
			summary.fail(fmt.Sprintf("booking %d: capture: %v", b.ID, err))
			continue
		}

		ok, err := s.bookingRepo.TransitionPayment(ctx, b.ID, domain.PaymentStatusPreauthorized, domain.PaymentStatusPaid, domain.BookingStatusConfirmed)
		if err != nil {
			summary.fail(fmt.Sprintf("booking %d: transition: %v", b.ID, err))
			continue
		}
		if !ok {
			summary.skip(fmt.Sprintf("booking %d: already transitioned", b.ID))
			continue
		}
		summary.capture(fmt.Sprintf("booking %d: captured %d %s", b.ID, b.GrossAmountCents, b.Currency))

		s.notifier.Notify(ctx, b.CustomerID, "Payment captured",
			"Your booking payment was captured after service completion",
			map[string]string{"type": "PAYMENT_CAPTURED", "booking_id": fmt.Sprintf("%d", b.ID)})
	}
	return summary
}

func (s *bookingService) AutoDeclineExpired(ctx context.Context, limit int) *BatchSummary {
	summary := &BatchSummary{}
	cutoff := s.now().Add(-time.Duration(s.payments.ConfirmationWindowHours) * time.Hour)

	bookings, err := s.bookingRepo.ListConfirmationExpired(ctx, cutoff, limit)
	if err != nil {
		logger.Error("Failed to list expired bookings", "error", err)
		summary.fail(fmt.Sprintf("list: %v", err))
		return summary
	}

	for _, b := range bookings {
		booking := b
		if err := s.declineAndRefund(ctx, &booking, "provider did not confirm in time"); err != nil {
			summary.fail(fmt.Sprintf("booking %d: %v", b.ID, err))
			continue
		}
		summary.capture(fmt.Sprintf("booking %d: declined after confirmation timeout", b.ID))
	}
	return summary
}

func (s *bookingService) TransferCompleted(ctx context.Context, limit int) *BatchSummary {
	summary := &BatchSummary{}
	cutoff := s.now().Add(-time.Duration(s.payments.CaptureGraceHours) * time.Hour)

	bookings, err := s.bookingRepo.ListTransferDue(ctx, cutoff, limit)
	if err != nil {
		logger.Error("Failed to list transfer-due bookings", "error", err)
		summary.fail(fmt.Sprintf("list: %v", err))
		return summary
	}

	for _, b := range bookings {
		provider, err := s.accountRepo.GetByID(ctx, b.ProviderID)
		if err != nil {
			summary.fail(fmt.Sprintf("booking %d: provider: %v", b.ID, err))
			continue
		}

		// Commission is split at transfer time, from the rate snapshotted on
		// the booking.
		commission, net := policy.Split(b.GrossAmountCents, b.CommissionRate)
		idemKey := processor.IdempotencyKey("booking-transfer", b.ID, 1)
		ref, err := s.proc.Transfer(ctx, net, b.Currency, provider.DestinationRef, b.PaymentRef, idemKey)
		if err != nil {
			summary.fail(fmt.Sprintf("booking %d: transfer: %v", b.ID, err))
			if _, recErr := s.transfers.RecordFailedTransfer(ctx, RecordTransferParams{
				BookingID:      &b.ID,
				PaymentRef:     b.PaymentRef,
				DestinationRef: provider.DestinationRef,
				AmountCents:    b.GrossAmountCents,
				Currency:       b.Currency,
				CommissionRate: b.CommissionRate,
				FailureReason:  err.Error(),
			}); recErr != nil {
				logger.Error("Failed to record failed transfer", "booking_id", b.ID, "error", recErr)
			}
			continue
		}

		ok, err := s.bookingRepo.SetTransferRef(ctx, b.ID, ref)
		if err != nil {
			summary.fail(fmt.Sprintf("booking %d: store transfer ref: %v", b.ID, err))
			continue
		}
		if !ok {
			// Another run already paid this booking out; the idempotency key
			// kept the processor side single.
			summary.skip(fmt.Sprintf("booking %d: payout already recorded", b.ID))
			continue
		}
		summary.capture(fmt.Sprintf("booking %d: transferred %d %s (commission %d)", b.ID, net, b.Currency, commission))

		s.notifier.Notify(ctx, provider.ID, "Payout sent",
			fmt.Sprintf("Your payout of %.2f %s is on its way", float64(net)/100, b.Currency),
			map[string]string{"type": "PAYOUT_SENT", "booking_id": fmt.Sprintf("%d", b.ID)})
	}
	return summary
}
