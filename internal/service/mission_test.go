package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
)

func newMissionServiceForTest(
	missionRepo *MockMissionRepo,
	accountRepo *MockAccountRepo,
	proc *MockProcessor,
	mailer *MockMailer,
	now time.Time,
) (*missionService, *noopNotifier) {
	notifier := &noopNotifier{}
	svc := NewMissionService(missionRepo, accountRepo, proc, notifier, mailer, testPaymentsConfig()).(*missionService)
	svc.now = func() time.Time { return now }
	return svc, notifier
}

func TestMissionService_CaptureDayOne(t *testing.T) {
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	proc := new(MockProcessor)
	svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, new(MockMailer), now)
	ctx := context.Background()

	agreement := &domain.MissionAgreement{ID: 3, StartDate: "2026-09-10", Status: domain.MissionStatusPaymentScheduled}
	payments := []domain.MissionPayment{
		{ID: 31, AgreementID: 3, Type: domain.MissionPaymentTypeCommission, AmountCents: 7000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_com"},
		{ID: 32, AgreementID: 3, Type: domain.MissionPaymentTypeDeposit, AmountCents: 30000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_dep"},
		{ID: 33, AgreementID: 3, Type: domain.MissionPaymentTypeInstallment, AmountCents: 20000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_inst"},
	}
	missionRepo.On("GetAgreementByID", ctx, int64(3)).Return(agreement, nil)
	missionRepo.On("ListPaymentsByAgreement", ctx, int64(3)).Return(payments, nil)
	for _, p := range []struct {
		id  int64
		ref string
	}{{31, "pi_com"}, {32, "pi_dep"}} {
		proc.On("RetrieveStatus", ctx, p.ref).Return(processor.StatusRequiresCapture, nil)
		missionRepo.On("TransitionPayment", ctx, p.id, domain.MissionPaymentStatusAuthorized, domain.MissionPaymentStatusProcessing).Return(true, nil)
		proc.On("Capture", ctx, p.ref, mock.AnythingOfType("string")).Return(processor.StatusSucceeded, nil)
		missionRepo.On("TransitionPayment", ctx, p.id, domain.MissionPaymentStatusProcessing, domain.MissionPaymentStatusCaptured).Return(true, nil)
	}
	missionRepo.On("TransitionAgreement", ctx, int64(3), domain.MissionStatusPaymentScheduled, domain.MissionStatusAwaitingStart).Return(true, nil)

	result, err := svc.CaptureDayOne(ctx, 3)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []int64{31, 32}, result.Captured)
	assert.Empty(t, result.Failed)
	// Installments are scheduled, not day-one money.
	proc.AssertNotCalled(t, "Capture", ctx, "pi_inst", mock.Anything)
	missionRepo.AssertExpectations(t)
}

func TestMissionService_CaptureDayOne_Idempotent(t *testing.T) {
	now := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	proc := new(MockProcessor)
	svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, new(MockMailer), now)
	ctx := context.Background()

	agreement := &domain.MissionAgreement{ID: 3, StartDate: "2026-09-10", Status: domain.MissionStatusAwaitingStart}
	payments := []domain.MissionPayment{
		{ID: 31, AgreementID: 3, Type: domain.MissionPaymentTypeCommission, Status: domain.MissionPaymentStatusCaptured, PaymentRef: "pi_com"},
		{ID: 32, AgreementID: 3, Type: domain.MissionPaymentTypeDeposit, Status: domain.MissionPaymentStatusCaptured, PaymentRef: "pi_dep"},
	}
	missionRepo.On("GetAgreementByID", ctx, int64(3)).Return(agreement, nil)
	missionRepo.On("ListPaymentsByAgreement", ctx, int64(3)).Return(payments, nil)
	missionRepo.On("TransitionAgreement", ctx, int64(3), domain.MissionStatusPaymentScheduled, domain.MissionStatusAwaitingStart).Return(false, nil)

	result, err := svc.CaptureDayOne(ctx, 3)
	assert.NoError(t, err)
	assert.Empty(t, result.Captured)
	assert.ElementsMatch(t, []int64{31, 32}, result.AlreadyCaptured)
	// A re-run never talks to the processor again.
	proc.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything)
}

func TestMissionService_CaptureDayOne_BeforeStart(t *testing.T) {
	now := time.Date(2026, 9, 9, 8, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)
	ctx := context.Background()

	missionRepo.On("GetAgreementByID", ctx, int64(3)).Return(&domain.MissionAgreement{ID: 3, StartDate: "2026-09-10"}, nil)

	_, err := svc.CaptureDayOne(ctx, 3)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMissionService_CaptureDue_RetryBudget(t *testing.T) {
	now := time.Date(2026, 9, 15, 6, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	proc := new(MockProcessor)
	svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, new(MockMailer), now)
	ctx := context.Background()

	payments := []domain.MissionPayment{
		// Second failure of three allowed: stays AUTHORIZED for the next run.
		{ID: 41, AgreementID: 4, AmountCents: 20000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_41", RetryCount: 1},
		// Third failure: marked FAILED, no further automatic attempts.
		{ID: 42, AgreementID: 4, AmountCents: 20000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_42", RetryCount: 2},
	}
	missionRepo.On("ListDuePayments", ctx, "2026-09-15", 100).Return(payments, nil)
	for _, p := range payments {
		proc.On("RetrieveStatus", ctx, p.PaymentRef).Return(processor.StatusRequiresCapture, nil)
		missionRepo.On("TransitionPayment", ctx, p.ID, domain.MissionPaymentStatusAuthorized, domain.MissionPaymentStatusProcessing).Return(true, nil)
		proc.On("Capture", ctx, p.PaymentRef, mock.AnythingOfType("string")).
			Return(processor.StatusFailed, &domain.ProcessorTransientError{Op: "capture", Err: assert.AnError})
	}
	missionRepo.On("RecordPaymentFailure", ctx, int64(41), mock.AnythingOfType("string"), domain.MissionPaymentStatusAuthorized).Return(nil)
	missionRepo.On("RecordPaymentFailure", ctx, int64(42), mock.AnythingOfType("string"), domain.MissionPaymentStatusFailed).Return(nil)

	summary := svc.CaptureDue(ctx, 100)
	assert.Equal(t, 2, summary.Failed)
	missionRepo.AssertExpectations(t)
}

func TestMissionService_CaptureDue_ReconcilesAlreadyCaptured(t *testing.T) {
	// A capture attempt timed out after the processor had already charged
	// the payer. The record is still AUTHORIZED but the processor reports
	// succeeded: the run reconciles the record instead of skipping it on
	// every pass.
	now := time.Date(2026, 9, 15, 6, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	proc := new(MockProcessor)
	svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, new(MockMailer), now)
	ctx := context.Background()

	payments := []domain.MissionPayment{
		{ID: 43, AgreementID: 4, AmountCents: 20000, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_43", RetryCount: 1},
	}
	missionRepo.On("ListDuePayments", ctx, "2026-09-15", 100).Return(payments, nil)
	proc.On("RetrieveStatus", ctx, "pi_43").Return(processor.StatusSucceeded, nil)
	missionRepo.On("TransitionPayment", ctx, int64(43), domain.MissionPaymentStatusAuthorized, domain.MissionPaymentStatusCaptured).Return(true, nil)

	summary := svc.CaptureDue(ctx, 100)
	assert.Equal(t, 1, summary.Captured)
	assert.Equal(t, 0, summary.Failed)
	proc.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything)
	missionRepo.AssertExpectations(t)
}

func TestMissionService_ResolveConfirmationTimeouts(t *testing.T) {
	now := time.Date(2026, 9, 20, 3, 0, 0, 0, time.UTC)
	missionRepo := new(MockMissionRepo)
	proc := new(MockProcessor)
	mailer := new(MockMailer)
	svc, notifier := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, mailer, now)
	ctx := context.Background()

	startCutoff := now.Add(-48 * time.Hour)
	endCutoff := now.Add(-168 * time.Hour)

	startStuck := []domain.MissionAgreement{{ID: 5, CompanyID: 100, DetailerID: 200, Status: domain.MissionStatusAwaitingStart}}
	endStuck := []domain.MissionAgreement{{ID: 6, CompanyID: 101, DetailerID: 201, Status: domain.MissionStatusAwaitingEnd}}

	missionRepo.On("ListStartTimeouts", ctx, startCutoff).Return(startStuck, nil)
	missionRepo.On("TransitionAgreement", ctx, int64(5), domain.MissionStatusAwaitingStart, domain.MissionStatusCancelled).Return(true, nil)
	missionRepo.On("ListPaymentsByAgreement", ctx, int64(5)).Return([]domain.MissionPayment{
		{ID: 51, Status: domain.MissionPaymentStatusAuthorized, PaymentRef: "pi_51"},
		{ID: 52, Status: domain.MissionPaymentStatusPending},
	}, nil)
	proc.On("Refund", ctx, "pi_51", (*int64)(nil), mock.AnythingOfType("string")).Return(processor.StatusSucceeded, nil)
	missionRepo.On("CancelOpenPayments", ctx, int64(5)).Return(int64(2), nil)
	mailer.On("SendOperatorAlert", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	missionRepo.On("ListEndTimeouts", ctx, endCutoff).Return(endStuck, nil)
	missionRepo.On("TransitionAgreement", ctx, int64(6), domain.MissionStatusAwaitingEnd, domain.MissionStatusCompleted).Return(true, nil)

	summary := svc.ResolveConfirmationTimeouts(ctx)
	assert.Equal(t, 2, summary.Captured)
	assert.Equal(t, 0, summary.Failed)
	// Both parties of both agreements are told.
	assert.Len(t, notifier.delivered, 4)
	missionRepo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestMissionService_ConfirmStart(t *testing.T) {
	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("first confirmation keeps awaiting", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 7, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusAwaitingStart}
		stamped := *a
		stamped.CompanyStartConfirm = &now
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(a, nil).Once()
		missionRepo.On("SetStartConfirm", ctx, int64(7), domain.AccountRoleCompany, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(&stamped, nil).Once()

		result, err := svc.ConfirmStart(ctx, 7, domain.AccountRoleCompany)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusAwaitingStart, result.Status)
		missionRepo.AssertNotCalled(t, "TransitionAgreement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second confirmation activates", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, notifier := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		confirmedAt := now.Add(-time.Hour)
		a := &domain.MissionAgreement{ID: 7, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusAwaitingStart, CompanyStartConfirm: &confirmedAt}
		both := *a
		both.DetailerStartConfirm = &now
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(a, nil).Once()
		missionRepo.On("SetStartConfirm", ctx, int64(7), domain.AccountRoleProvider, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(&both, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(7), domain.MissionStatusAwaitingStart, domain.MissionStatusActive).Return(true, nil).Once()

		result, err := svc.ConfirmStart(ctx, 7, domain.AccountRoleProvider)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusActive, result.Status)
		assert.Contains(t, notifier.delivered, "Mission started")
	})

	t.Run("concurrent counterpart confirmation is not lost", func(t *testing.T) {
		// The counterpart's confirmation lands between this caller's first
		// read and the column write. The per-column update keeps both
		// timestamps and the re-read sees them, so the agreement activates
		// instead of stranding on AWAITING_START.
		missionRepo := new(MockMissionRepo)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 7, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusAwaitingStart}
		concurrent := now.Add(-time.Second)
		both := *a
		both.CompanyStartConfirm = &now
		both.DetailerStartConfirm = &concurrent
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(a, nil).Once()
		missionRepo.On("SetStartConfirm", ctx, int64(7), domain.AccountRoleCompany, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(&both, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(7), domain.MissionStatusAwaitingStart, domain.MissionStatusActive).Return(true, nil).Once()

		result, err := svc.ConfirmStart(ctx, 7, domain.AccountRoleCompany)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusActive, result.Status)
		missionRepo.AssertExpectations(t)
	})

	t.Run("losing the activation race re-reads the winner's state", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, notifier := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		confirmedAt := now.Add(-time.Hour)
		a := &domain.MissionAgreement{ID: 7, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusAwaitingStart, CompanyStartConfirm: &confirmedAt}
		both := *a
		both.DetailerStartConfirm = &now
		active := both
		active.Status = domain.MissionStatusActive
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(a, nil).Once()
		missionRepo.On("SetStartConfirm", ctx, int64(7), domain.AccountRoleProvider, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(&both, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(7), domain.MissionStatusAwaitingStart, domain.MissionStatusActive).Return(false, nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(7)).Return(&active, nil).Once()

		result, err := svc.ConfirmStart(ctx, 7, domain.AccountRoleProvider)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusActive, result.Status)
		// The winner sends the notifications.
		assert.NotContains(t, notifier.delivered, "Mission started")
	})
}

func TestMissionService_ConfirmEnd(t *testing.T) {
	now := time.Date(2026, 10, 10, 17, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("first end confirmation parks the agreement", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 8, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusActive}
		stamped := *a
		stamped.DetailerEndConfirm = &now
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(a, nil).Once()
		missionRepo.On("SetEndConfirm", ctx, int64(8), domain.AccountRoleProvider, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(&stamped, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(8), domain.MissionStatusActive, domain.MissionStatusAwaitingEnd).Return(true, nil).Once()

		result, err := svc.ConfirmEnd(ctx, 8, domain.AccountRoleProvider)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusAwaitingEnd, result.Status)
	})

	t.Run("second end confirmation completes", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		confirmedAt := now.Add(-2 * time.Hour)
		a := &domain.MissionAgreement{ID: 8, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusAwaitingEnd, DetailerEndConfirm: &confirmedAt}
		both := *a
		both.CompanyEndConfirm = &now
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(a, nil).Once()
		missionRepo.On("SetEndConfirm", ctx, int64(8), domain.AccountRoleCompany, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(&both, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(8), domain.MissionStatusAwaitingEnd, domain.MissionStatusCompleted).Return(true, nil).Once()

		result, err := svc.ConfirmEnd(ctx, 8, domain.AccountRoleCompany)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusCompleted, result.Status)
	})

	t.Run("concurrent end confirmations both land", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), new(MockProcessor), new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 8, CompanyID: 1, DetailerID: 2, Status: domain.MissionStatusActive}
		concurrent := now.Add(-time.Second)
		both := *a
		both.CompanyEndConfirm = &now
		both.DetailerEndConfirm = &concurrent
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(a, nil).Once()
		missionRepo.On("SetEndConfirm", ctx, int64(8), domain.AccountRoleCompany, now).Return(nil).Once()
		missionRepo.On("GetAgreementByID", ctx, int64(8)).Return(&both, nil).Once()
		missionRepo.On("TransitionAgreement", ctx, int64(8), domain.MissionStatusActive, domain.MissionStatusCompleted).Return(true, nil).Once()

		result, err := svc.ConfirmEnd(ctx, 8, domain.AccountRoleCompany)
		assert.NoError(t, err)
		assert.Equal(t, domain.MissionStatusCompleted, result.Status)
		missionRepo.AssertExpectations(t)
	})
}

func TestMissionService_ValidateSEPAMandate(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("off-session succeeds and test charge refunded", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		accountRepo := new(MockAccountRepo)
		proc := new(MockProcessor)
		svc, _ := newMissionServiceForTest(missionRepo, accountRepo, proc, new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 9, CompanyID: 1, Currency: "EUR", SEPAMandateRef: "pm_sepa"}
		missionRepo.On("GetAgreementByID", ctx, int64(9)).Return(a, nil)
		accountRepo.On("GetByID", ctx, int64(1)).Return(&domain.Account{ID: 1, PayerRef: "cus_co"}, nil)
		proc.On("CreateOffSessionPayment", ctx, int64(100), "EUR", "cus_co", "pm_sepa", mock.AnythingOfType("string")).
			Return(&processor.Authorization{Ref: "pi_test", Status: processor.StatusSucceeded}, nil)
		proc.On("Refund", ctx, "pi_test", (*int64)(nil), mock.AnythingOfType("string")).Return(processor.StatusSucceeded, nil)
		missionRepo.On("SetMandateValidated", ctx, int64(9)).Return(nil)

		result, err := svc.ValidateSEPAMandate(ctx, 9)
		assert.NoError(t, err)
		assert.True(t, result.Validated)
		assert.False(t, result.OnSession)
		missionRepo.AssertExpectations(t)
		proc.AssertExpectations(t)
	})

	t.Run("requires on-session confirmation", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		accountRepo := new(MockAccountRepo)
		proc := new(MockProcessor)
		svc, _ := newMissionServiceForTest(missionRepo, accountRepo, proc, new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 9, CompanyID: 1, Currency: "EUR", SEPAMandateRef: "pm_sepa"}
		missionRepo.On("GetAgreementByID", ctx, int64(9)).Return(a, nil)
		accountRepo.On("GetByID", ctx, int64(1)).Return(&domain.Account{ID: 1, PayerRef: "cus_co"}, nil)
		proc.On("CreateOffSessionPayment", ctx, int64(100), "EUR", "cus_co", "pm_sepa", mock.AnythingOfType("string")).
			Return(&processor.Authorization{Ref: "pi_test", Status: processor.StatusRequiresAction, ClientSecret: "pi_test_secret"}, nil)

		result, err := svc.ValidateSEPAMandate(ctx, 9)
		assert.NoError(t, err)
		assert.False(t, result.Validated)
		assert.True(t, result.OnSession)
		assert.Equal(t, "pi_test_secret", result.ClientSecret)
		missionRepo.AssertNotCalled(t, "SetMandateValidated", mock.Anything, mock.Anything)
	})

	t.Run("already validated short-circuits", func(t *testing.T) {
		missionRepo := new(MockMissionRepo)
		proc := new(MockProcessor)
		svc, _ := newMissionServiceForTest(missionRepo, new(MockAccountRepo), proc, new(MockMailer), now)

		a := &domain.MissionAgreement{ID: 9, SEPAMandateRef: "pm_sepa", MandateValidated: true}
		missionRepo.On("GetAgreementByID", ctx, int64(9)).Return(a, nil)

		result, err := svc.ValidateSEPAMandate(ctx, 9)
		assert.NoError(t, err)
		assert.True(t, result.Validated)
		proc.AssertNotCalled(t, "CreateOffSessionPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
