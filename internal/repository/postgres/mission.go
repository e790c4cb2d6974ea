package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type missionRepository struct {
	db *sql.DB
}

func NewMissionRepository(db *sql.DB) repository.MissionRepository {
	return &missionRepository{db: db}
}

const agreementColumns = `id, company_id, detailer_id, final_price_cents, deposit_percentage, currency,
	start_date, status, company_start_confirm, detailer_start_confirm, company_end_confirm,
	detailer_end_confirm, COALESCE(sepa_mandate_ref, ''), mandate_validated, created_on, updated_on`

func (r *missionRepository) GetAgreementByID(ctx context.Context, id int64) (*domain.MissionAgreement, error) {
	a := &domain.MissionAgreement{}
	query := `SELECT ` + agreementColumns + ` FROM mission_agreements WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CompanyID, &a.DetailerID, &a.FinalPriceCents, &a.DepositPercentage, &a.Currency,
		&a.StartDate, &a.Status, &a.CompanyStartConfirm, &a.DetailerStartConfirm, &a.CompanyEndConfirm,
		&a.DetailerEndConfirm, &a.SEPAMandateRef, &a.MandateValidated, &a.CreatedOn, &a.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAgreementNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// confirmColumn maps a party to its confirmation column. The update COALESCEs
// the existing value so a concurrent confirmation by the other party is never
// overwritten and a repeated confirmation keeps its original timestamp.
func confirmColumn(party domain.AccountRole, phase string) (string, error) {
	switch party {
	case domain.AccountRoleCompany:
		return "company_" + phase + "_confirm", nil
	case domain.AccountRoleProvider:
		return "detailer_" + phase + "_confirm", nil
	}
	return "", fmt.Errorf("no confirmation column for party %q", party)
}

func (r *missionRepository) SetStartConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error {
	return r.setConfirm(ctx, id, party, "start", at)
}

func (r *missionRepository) SetEndConfirm(ctx context.Context, id int64, party domain.AccountRole, at time.Time) error {
	return r.setConfirm(ctx, id, party, "end", at)
}

func (r *missionRepository) setConfirm(ctx context.Context, id int64, party domain.AccountRole, phase string, at time.Time) error {
	col, err := confirmColumn(party, phase)
	if err != nil {
		return err
	}
	query := `UPDATE mission_agreements SET ` + col + ` = COALESCE(` + col + `, $1), updated_on=$2 WHERE id=$3`
	_, err = r.db.ExecContext(ctx, query, at, time.Now(), id)
	return err
}

func (r *missionRepository) TransitionAgreement(ctx context.Context, id int64, from, to domain.MissionStatus) (bool, error) {
	query := `UPDATE mission_agreements SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *missionRepository) ListStartTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error) {
	// One-sided start confirmation older than the cutoff.
	query := `SELECT ` + agreementColumns + ` FROM mission_agreements
	          WHERE status = $1
	            AND ((company_start_confirm IS NOT NULL AND detailer_start_confirm IS NULL AND company_start_confirm < $2)
	              OR (detailer_start_confirm IS NOT NULL AND company_start_confirm IS NULL AND detailer_start_confirm < $2))
	          ORDER BY id ASC`
	return r.listAgreements(ctx, query, domain.MissionStatusAwaitingStart, cutoff)
}

func (r *missionRepository) ListEndTimeouts(ctx context.Context, cutoff time.Time) ([]domain.MissionAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM mission_agreements
	          WHERE status = $1
	            AND ((company_end_confirm IS NOT NULL AND detailer_end_confirm IS NULL AND company_end_confirm < $2)
	              OR (detailer_end_confirm IS NOT NULL AND company_end_confirm IS NULL AND detailer_end_confirm < $2))
	          ORDER BY id ASC`
	return r.listAgreements(ctx, query, domain.MissionStatusAwaitingEnd, cutoff)
}

func (r *missionRepository) listAgreements(ctx context.Context, query string, args ...interface{}) ([]domain.MissionAgreement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []domain.MissionAgreement
	for rows.Next() {
		var a domain.MissionAgreement
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.DetailerID, &a.FinalPriceCents, &a.DepositPercentage, &a.Currency,
			&a.StartDate, &a.Status, &a.CompanyStartConfirm, &a.DetailerStartConfirm, &a.CompanyEndConfirm,
			&a.DetailerEndConfirm, &a.SEPAMandateRef, &a.MandateValidated, &a.CreatedOn, &a.UpdatedOn); err != nil {
			return nil, err
		}
		agreements = append(agreements, a)
	}
	return agreements, rows.Err()
}

const paymentColumns = `id, agreement_id, amount_cents, type, scheduled_date, status,
	COALESCE(payment_ref, ''), retry_count, COALESCE(failure_reason, ''), created_on, updated_on`

func (r *missionRepository) GetPaymentByID(ctx context.Context, id int64) (*domain.MissionPayment, error) {
	p := &domain.MissionPayment{}
	query := `SELECT ` + paymentColumns + ` FROM mission_payments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.AgreementID, &p.AmountCents, &p.Type, &p.ScheduledDate, &p.Status,
		&p.PaymentRef, &p.RetryCount, &p.FailureReason, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *missionRepository) ListPaymentsByAgreement(ctx context.Context, agreementID int64) ([]domain.MissionPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM mission_payments
	          WHERE agreement_id = $1 ORDER BY scheduled_date ASC, id ASC`
	return r.listPayments(ctx, query, agreementID)
}

func (r *missionRepository) ListDuePayments(ctx context.Context, date string, limit int) ([]domain.MissionPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM mission_payments
	          WHERE status = $1 AND scheduled_date <= $2
	          ORDER BY scheduled_date ASC, id ASC LIMIT $3`
	return r.listPayments(ctx, query, domain.MissionPaymentStatusAuthorized, date, limit)
}

func (r *missionRepository) listPayments(ctx context.Context, query string, args ...interface{}) ([]domain.MissionPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.MissionPayment
	for rows.Next() {
		var p domain.MissionPayment
		if err := rows.Scan(
			&p.ID, &p.AgreementID, &p.AmountCents, &p.Type, &p.ScheduledDate, &p.Status,
			&p.PaymentRef, &p.RetryCount, &p.FailureReason, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *missionRepository) TransitionPayment(ctx context.Context, id int64, from, to domain.MissionPaymentStatus) (bool, error) {
	query := `UPDATE mission_payments SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *missionRepository) RecordPaymentFailure(ctx context.Context, id int64, reason string, status domain.MissionPaymentStatus) error {
	query := `UPDATE mission_payments SET status=$1, failure_reason=$2, retry_count=retry_count+1, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, status, reason, time.Now(), id)
	return err
}

func (r *missionRepository) CancelOpenPayments(ctx context.Context, agreementID int64) (int64, error) {
	query := `UPDATE mission_payments SET status=$1, updated_on=$2
	          WHERE agreement_id=$3 AND status IN ($4, $5)`
	result, err := r.db.ExecContext(ctx, query, domain.MissionPaymentStatusCancelled, time.Now(),
		agreementID, domain.MissionPaymentStatusPending, domain.MissionPaymentStatusAuthorized)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *missionRepository) SetMandateValidated(ctx context.Context, agreementID int64) error {
	query := `UPDATE mission_agreements SET mandate_validated=TRUE, updated_on=$1 WHERE id=$2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), agreementID)
	return err
}
