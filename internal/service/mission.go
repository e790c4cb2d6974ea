package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/config"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

// sepaTestAmountCents is the 1-unit-currency test payment used to validate a
// mandate for off-session captures.
const sepaTestAmountCents = 100

type missionService struct {
	missionRepo repository.MissionRepository
	accountRepo repository.AccountRepository
	proc        processor.PaymentProcessor
	notifier    Notifier
	mailer      OperatorMailer
	payments    config.PaymentsConfig
	now         func() time.Time
}

func NewMissionService(
	missionRepo repository.MissionRepository,
	accountRepo repository.AccountRepository,
	proc processor.PaymentProcessor,
	notifier Notifier,
	mailer OperatorMailer,
	payments config.PaymentsConfig,
) MissionService {
	return &missionService{
		missionRepo: missionRepo,
		accountRepo: accountRepo,
		proc:        proc,
		notifier:    notifier,
		mailer:      mailer,
		payments:    payments,
		now:         time.Now,
	}
}

func (s *missionService) CaptureDayOne(ctx context.Context, agreementID int64) (*DayOneResult, error) {
	a, err := s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	today := s.now().Format("2006-01-02")
	if a.StartDate > today {
		return nil, &domain.ValidationError{Field: "start_date", Reason: "mission has not started yet"}
	}

	payments, err := s.missionRepo.ListPaymentsByAgreement(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	result := &DayOneResult{}
	for _, p := range payments {
		if p.Type != domain.MissionPaymentTypeCommission && p.Type != domain.MissionPaymentTypeDeposit {
			continue
		}
		switch p.Status {
		case domain.MissionPaymentStatusCaptured:
			result.AlreadyCaptured = append(result.AlreadyCaptured, p.ID)
		case domain.MissionPaymentStatusAuthorized:
			if err := s.capturePayment(ctx, &p); err != nil {
				result.Failed = append(result.Failed, p.ID)
			} else {
				result.Captured = append(result.Captured, p.ID)
			}
		default:
			result.Failed = append(result.Failed, p.ID)
		}
	}

	if len(result.Failed) == 0 {
		if _, err := s.missionRepo.TransitionAgreement(ctx, agreementID, domain.MissionStatusPaymentScheduled, domain.MissionStatusAwaitingStart); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// capturePayment runs a single mission payment through the optimistic gate:
// AUTHORIZED -> PROCESSING -> CAPTURED. Losing the gate means a concurrent
// run owns the payment. The processor-side authorization is re-verified
// first; a lapsed hold is never forced.
func (s *missionService) capturePayment(ctx context.Context, p *domain.MissionPayment) error {
	status, err := s.proc.RetrieveStatus(ctx, p.PaymentRef)
	if err != nil {
		return err
	}
	if status == processor.StatusSucceeded {
		// A previous attempt's capture went through but its outcome was
		// lost before the record write. Reconcile rather than skip forever.
		ok, err := s.missionRepo.TransitionPayment(ctx, p.ID, domain.MissionPaymentStatusAuthorized, domain.MissionPaymentStatusCaptured)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.PreconditionError{Entity: "mission_payment", ID: p.ID, Expected: string(domain.MissionPaymentStatusAuthorized), Actual: "concurrently handled"}
		}
		return nil
	}
	if !status.Capturable() {
		return &domain.PreconditionError{Entity: "mission_payment", ID: p.ID, Expected: string(processor.StatusRequiresCapture), Actual: string(status)}
	}

	ok, err := s.missionRepo.TransitionPayment(ctx, p.ID, domain.MissionPaymentStatusAuthorized, domain.MissionPaymentStatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.PreconditionError{Entity: "mission_payment", ID: p.ID, Expected: string(domain.MissionPaymentStatusAuthorized), Actual: "concurrently handled"}
	}

	idemKey := processor.IdempotencyKey("mission-capture", p.ID, p.RetryCount+1)
	if _, err := s.proc.Capture(ctx, p.PaymentRef, idemKey); err != nil {
		// Transient failures stay AUTHORIZED so the next run retries;
		// permanent failures and an exhausted retry budget end in FAILED.
		next := domain.MissionPaymentStatusAuthorized
		if domain.IsPermanent(err) || p.RetryCount+1 >= domain.DefaultMaxTransferRetries {
			next = domain.MissionPaymentStatusFailed
		}
		if recErr := s.missionRepo.RecordPaymentFailure(ctx, p.ID, err.Error(), next); recErr != nil {
			logger.Error("Failed to record mission payment failure", "payment_id", p.ID, "error", recErr)
		}
		return err
	}

	ok, err = s.missionRepo.TransitionPayment(ctx, p.ID, domain.MissionPaymentStatusProcessing, domain.MissionPaymentStatusCaptured)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warn("Mission payment left processing by another writer", "payment_id", p.ID)
	}
	return nil
}

func (s *missionService) CaptureDue(ctx context.Context, limit int) *BatchSummary {
	summary := &BatchSummary{}
	today := s.now().Format("2006-01-02")

	payments, err := s.missionRepo.ListDuePayments(ctx, today, limit)
	if err != nil {
		logger.Error("Failed to list due mission payments", "error", err)
		summary.fail(fmt.Sprintf("list: %v", err))
		return summary
	}

	for _, p := range payments {
		payment := p
		if err := s.capturePayment(ctx, &payment); err != nil {
			if domain.IsPrecondition(err) {
				summary.skip(fmt.Sprintf("payment %d: %v", p.ID, err))
			} else {
				summary.fail(fmt.Sprintf("payment %d: %v", p.ID, err))
			}
			continue
		}
		summary.capture(fmt.Sprintf("payment %d: captured %d for agreement %d", p.ID, p.AmountCents, p.AgreementID))
	}
	return summary
}

func (s *missionService) ResolveConfirmationTimeouts(ctx context.Context) *BatchSummary {
	summary := &BatchSummary{}

	// One party confirmed the start but the counterpart stayed silent: no
	// funds are committed yet, so the agreement cancels and its open
	// payments are voided.
	startCutoff := s.now().Add(-time.Duration(s.payments.StartTimeoutHours) * time.Hour)
	startTimeouts, err := s.missionRepo.ListStartTimeouts(ctx, startCutoff)
	if err != nil {
		logger.Error("Failed to list start timeouts", "error", err)
		summary.fail(fmt.Sprintf("list start timeouts: %v", err))
	}
	for _, a := range startTimeouts {
		if err := s.cancelTimedOutAgreement(ctx, &a); err != nil {
			summary.fail(fmt.Sprintf("agreement %d: %v", a.ID, err))
			continue
		}
		summary.capture(fmt.Sprintf("agreement %d: cancelled after start timeout", a.ID))
	}

	// At the end the funds are already committed: finalizing without the
	// second confirmation is safe.
	endCutoff := s.now().Add(-time.Duration(s.payments.EndTimeoutHours) * time.Hour)
	endTimeouts, err := s.missionRepo.ListEndTimeouts(ctx, endCutoff)
	if err != nil {
		logger.Error("Failed to list end timeouts", "error", err)
		summary.fail(fmt.Sprintf("list end timeouts: %v", err))
	}
	for _, a := range endTimeouts {
		ok, err := s.missionRepo.TransitionAgreement(ctx, a.ID, domain.MissionStatusAwaitingEnd, domain.MissionStatusCompleted)
		if err != nil {
			summary.fail(fmt.Sprintf("agreement %d: %v", a.ID, err))
			continue
		}
		if !ok {
			summary.skip(fmt.Sprintf("agreement %d: already resolved", a.ID))
			continue
		}
		summary.capture(fmt.Sprintf("agreement %d: completed after end timeout", a.ID))
		s.notifyParties(ctx, &a, "Mission completed",
			"The mission was automatically completed after the confirmation window passed",
			"MISSION_COMPLETED")
	}
	return summary
}

func (s *missionService) cancelTimedOutAgreement(ctx context.Context, a *domain.MissionAgreement) error {
	ok, err := s.missionRepo.TransitionAgreement(ctx, a.ID, domain.MissionStatusAwaitingStart, domain.MissionStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	// Void uncaptured holds before cancelling the rows.
	payments, err := s.missionRepo.ListPaymentsByAgreement(ctx, a.ID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.Status != domain.MissionPaymentStatusAuthorized || p.PaymentRef == "" {
			continue
		}
		idemKey := processor.IdempotencyKey("mission-void", p.ID, 1)
		if _, err := s.proc.Refund(ctx, p.PaymentRef, nil, idemKey); err != nil {
			logger.Error("Failed to void mission payment hold", "payment_id", p.ID, "error", err)
		}
	}
	if _, err := s.missionRepo.CancelOpenPayments(ctx, a.ID); err != nil {
		return err
	}

	s.notifyParties(ctx, a, "Mission cancelled",
		"The mission was cancelled because the start was not confirmed in time",
		"MISSION_CANCELLED")
	if s.mailer != nil {
		if err := s.mailer.SendOperatorAlert(ctx, fmt.Sprintf("Mission %d auto-cancelled", a.ID),
			fmt.Sprintf("Mission agreement %d between company %d and detailer %d was cancelled after a one-sided start confirmation timed out.", a.ID, a.CompanyID, a.DetailerID)); err != nil {
			logger.Error("Operator alert failed", "agreement_id", a.ID, "error", err)
		}
	}
	return nil
}

// Confirmations write a single column server-side and only then re-read;
// the read-modify-write of the whole row would let two concurrent parties
// clobber each other's timestamp and strand the agreement.

func (s *missionService) ConfirmStart(ctx context.Context, agreementID int64, party domain.AccountRole) (*domain.MissionAgreement, error) {
	a, err := s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.MissionStatusAwaitingStart {
		return nil, &domain.PreconditionError{Entity: "mission_agreement", ID: a.ID, Expected: string(domain.MissionStatusAwaitingStart), Actual: string(a.Status)}
	}
	if party != domain.AccountRoleCompany && party != domain.AccountRoleProvider {
		return nil, &domain.ValidationError{Field: "party", Reason: "must be company or provider"}
	}

	if err := s.missionRepo.SetStartConfirm(ctx, agreementID, party, s.now()); err != nil {
		return nil, err
	}
	a, err = s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	if a.Status == domain.MissionStatusAwaitingStart && a.CompanyStartConfirm != nil && a.DetailerStartConfirm != nil {
		ok, err := s.missionRepo.TransitionAgreement(ctx, agreementID, domain.MissionStatusAwaitingStart, domain.MissionStatusActive)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The concurrent confirmation won the advance.
			return s.missionRepo.GetAgreementByID(ctx, agreementID)
		}
		a.Status = domain.MissionStatusActive
		s.notifyParties(ctx, a, "Mission started", "Both parties confirmed the mission start", "MISSION_STARTED")
	}
	return a, nil
}

func (s *missionService) ConfirmEnd(ctx context.Context, agreementID int64, party domain.AccountRole) (*domain.MissionAgreement, error) {
	a, err := s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.MissionStatusActive && a.Status != domain.MissionStatusAwaitingEnd {
		return nil, &domain.PreconditionError{Entity: "mission_agreement", ID: a.ID, Expected: "active or awaiting end", Actual: string(a.Status)}
	}
	if party != domain.AccountRoleCompany && party != domain.AccountRoleProvider {
		return nil, &domain.ValidationError{Field: "party", Reason: "must be company or provider"}
	}

	if err := s.missionRepo.SetEndConfirm(ctx, agreementID, party, s.now()); err != nil {
		return nil, err
	}
	a, err = s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}

	if a.CompanyEndConfirm != nil && a.DetailerEndConfirm != nil {
		if a.Status == domain.MissionStatusCompleted {
			return a, nil
		}
		ok, err := s.missionRepo.TransitionAgreement(ctx, agreementID, a.Status, domain.MissionStatusCompleted)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.missionRepo.GetAgreementByID(ctx, agreementID)
		}
		a.Status = domain.MissionStatusCompleted
		s.notifyParties(ctx, a, "Mission completed", "Both parties confirmed the mission end", "MISSION_COMPLETED")
		return a, nil
	}

	if a.Status == domain.MissionStatusActive {
		if ok, err := s.missionRepo.TransitionAgreement(ctx, agreementID, domain.MissionStatusActive, domain.MissionStatusAwaitingEnd); err != nil {
			return nil, err
		} else if ok {
			a.Status = domain.MissionStatusAwaitingEnd
		}
	}
	return a, nil
}

// ValidateSEPAMandate attempts a 1-unit off-session test payment against the
// agreement's mandate. If the processor allows immediate confirmation the
// test charge is refunded synchronously and the mandate marked usable;
// otherwise the caller must put the payer through on-session confirmation
// with the returned client secret.
func (s *missionService) ValidateSEPAMandate(ctx context.Context, agreementID int64) (*SEPAMandateResult, error) {
	a, err := s.missionRepo.GetAgreementByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if a.SEPAMandateRef == "" {
		return nil, &domain.ValidationError{Field: "sepa_mandate_ref", Reason: "agreement has no mandate"}
	}
	if a.MandateValidated {
		return &SEPAMandateResult{Validated: true}, nil
	}
	company, err := s.accountRepo.GetByID(ctx, a.CompanyID)
	if err != nil {
		return nil, err
	}

	idemKey := processor.IdempotencyKey("mandate-test", a.ID, 1)
	auth, err := s.proc.CreateOffSessionPayment(ctx, sepaTestAmountCents, a.Currency, company.PayerRef, a.SEPAMandateRef, idemKey)
	if err != nil {
		return nil, fmt.Errorf("mandate test payment failed: %w", err)
	}

	switch auth.Status {
	case processor.StatusSucceeded, processor.StatusProcessing:
		refundKey := processor.IdempotencyKey("mandate-test-refund", a.ID, 1)
		if _, err := s.proc.Refund(ctx, auth.Ref, nil, refundKey); err != nil {
			// The mandate works; the euro comes back via support if this
			// refund also fails on retry.
			logger.Error("Mandate test refund failed", "agreement_id", a.ID, "error", err)
		}
		if err := s.missionRepo.SetMandateValidated(ctx, a.ID); err != nil {
			return nil, err
		}
		return &SEPAMandateResult{Validated: true}, nil

	case processor.StatusRequiresAction, processor.StatusRequiresConfirmation:
		return &SEPAMandateResult{OnSession: true, ClientSecret: auth.ClientSecret}, nil

	default:
		return nil, &domain.ProcessorPermanentError{Op: "mandate test", Code: string(auth.Status), Detail: "mandate cannot be used for off-session payments"}
	}
}

func (s *missionService) notifyParties(ctx context.Context, a *domain.MissionAgreement, title, message, notifType string) {
	attrs := map[string]string{"type": notifType, "agreement_id": fmt.Sprintf("%d", a.ID)}
	s.notifier.Notify(ctx, a.CompanyID, title, message, attrs)
	s.notifier.Notify(ctx, a.DetailerID, title, message, attrs)
}
