package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/processor"
)

type MockBookingRepo struct{ mock.Mock }

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) TransitionPayment(ctx context.Context, id int64, from, to domain.PaymentStatus, status domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, from, to, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) SetTransferRef(ctx context.Context, id int64, ref string) (bool, error) {
	args := m.Called(ctx, id, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ListCaptureDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListConfirmationExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ListTransferDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCatalogRepo struct{ mock.Mock }

func (m *MockCatalogRepo) GetServiceByID(ctx context.Context, id int64) (*domain.DetailingService, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetailingService), args.Error(1)
}

type MockAccountRepo struct{ mock.Mock }

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type MockMissionRepo struct{ mock.Mock }

func (m *MockMissionRepo) GetAgreementByID(ctx context.Context, id int64) (*domain.MissionAgreement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MissionAgreement), args.Error(1)
}

func (m *MockMissionRepo) SetStartConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error {
	args := m.Called(ctx, id, party, at)
	return args.Error(0)
}

func (m *MockMissionRepo) SetEndConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error {
	args := m.Called(ctx, id, party, at)
	return args.Error(0)
}

func (m *MockMissionRepo) TransitionAgreement(ctx context.Context, id int64, from, to domain.MissionStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissionRepo) ListStartTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MissionAgreement), args.Error(1)
}

func (m *MockMissionRepo) ListEndTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MissionAgreement), args.Error(1)
}

func (m *MockMissionRepo) GetPaymentByID(ctx context.Context, id int64) (*domain.MissionPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MissionPayment), args.Error(1)
}

func (m *MockMissionRepo) ListPaymentsByAgreement(ctx context.Context, agreementID int64) ([]domain.MissionPayment, error) {
	args := m.Called(ctx, agreementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MissionPayment), args.Error(1)
}

func (m *MockMissionRepo) ListDuePayments(ctx context.Context, date string, limit int) ([]domain.MissionPayment, error) {
	args := m.Called(ctx, date, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MissionPayment), args.Error(1)
}

func (m *MockMissionRepo) TransitionPayment(ctx context.Context, id int64, from, to domain.MissionPaymentStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockMissionRepo) RecordPaymentFailure(ctx context.Context, id int64, reason string, status domain.MissionPaymentStatus) error {
	args := m.Called(ctx, id, reason, status)
	return args.Error(0)
}

func (m *MockMissionRepo) CancelOpenPayments(ctx context.Context, agreementID int64) (int64, error) {
	args := m.Called(ctx, agreementID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMissionRepo) SetMandateValidated(ctx context.Context, agreementID int64) error {
	args := m.Called(ctx, agreementID)
	return args.Error(0)
}

type MockTransferRepo struct{ mock.Mock }

func (m *MockTransferRepo) Create(ctx context.Context, t *domain.FailedTransfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferRepo) GetByID(ctx context.Context, id int64) (*domain.FailedTransfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedTransfer), args.Error(1)
}

func (m *MockTransferRepo) ListPending(ctx context.Context, limit int) ([]domain.FailedTransfer, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FailedTransfer), args.Error(1)
}

func (m *MockTransferRepo) Transition(ctx context.Context, id int64, from, to domain.TransferStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransferRepo) MarkSucceeded(ctx context.Context, id int64, transferRef string) error {
	args := m.Called(ctx, id, transferRef)
	return args.Error(0)
}

func (m *MockTransferRepo) MarkFailedAttempt(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockTransferRepo) MarkFailedPermanently(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockProcessor struct{ mock.Mock }

func (m *MockProcessor) Authorize(ctx context.Context, amountCents int64, currency, payerRef, idemKey string) (*processor.Authorization, error) {
	args := m.Called(ctx, amountCents, currency, payerRef, idemKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Authorization), args.Error(1)
}

func (m *MockProcessor) Capture(ctx context.Context, paymentRef, idemKey string) (processor.Status, error) {
	args := m.Called(ctx, paymentRef, idemKey)
	return args.Get(0).(processor.Status), args.Error(1)
}

func (m *MockProcessor) Refund(ctx context.Context, ref string, amountCents *int64, idemKey string) (processor.Status, error) {
	args := m.Called(ctx, ref, amountCents, idemKey)
	return args.Get(0).(processor.Status), args.Error(1)
}

func (m *MockProcessor) Transfer(ctx context.Context, amountCents int64, currency, destinationRef, sourceChargeRef, idemKey string) (string, error) {
	args := m.Called(ctx, amountCents, currency, destinationRef, sourceChargeRef, idemKey)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) RetrieveStatus(ctx context.Context, paymentRef string) (processor.Status, error) {
	args := m.Called(ctx, paymentRef)
	return args.Get(0).(processor.Status), args.Error(1)
}

func (m *MockProcessor) CreateOffSessionPayment(ctx context.Context, amountCents int64, currency, payerRef, mandateRef, idemKey string) (*processor.Authorization, error) {
	args := m.Called(ctx, amountCents, currency, payerRef, mandateRef, idemKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Authorization), args.Error(1)
}

type MockTransferService struct{ mock.Mock }

func (m *MockTransferService) RecordFailedTransfer(ctx context.Context, params RecordTransferParams) (*domain.FailedTransfer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedTransfer), args.Error(1)
}

func (m *MockTransferService) RetryFailedTransfer(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransferService) RetryAllPending(ctx context.Context, limit int) *BatchSummary {
	args := m.Called(ctx, limit)
	return args.Get(0).(*BatchSummary)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendOperatorAlert(ctx context.Context, subject, body string) error {
	args := m.Called(ctx, subject, body)
	return args.Error(0)
}

// noopNotifier records deliveries so tests can assert on them without
// stubbing every call.
type noopNotifier struct {
	delivered []string
}

func (n *noopNotifier) Notify(ctx context.Context, userID int64, title, message string, attributes map[string]string) {
	n.delivered = append(n.delivered, title)
}
