package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `id, booking_id, agreement_id, payment_ref, destination_ref, amount_cents, currency,
	commission_rate, commission_cents, net_cents, status, retry_count, max_retries,
	COALESCE(failure_reason, ''), transfer_ref, created_on, updated_on`

func (r *transferRepository) Create(ctx context.Context, t *domain.FailedTransfer) error {
	query := `INSERT INTO failed_transfers (booking_id, agreement_id, payment_ref, destination_ref, amount_cents,
	              currency, commission_rate, commission_cents, net_cents, status, retry_count, max_retries,
	              failure_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	t.CreatedOn = now
	t.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query,
		t.BookingID, t.AgreementID, t.PaymentRef, t.DestinationRef, t.AmountCents,
		t.Currency, t.CommissionRate, t.CommissionCents, t.NetCents, t.Status, t.RetryCount, t.MaxRetries,
		t.FailureReason, now, now).Scan(&t.ID)
}

func (r *transferRepository) GetByID(ctx context.Context, id int64) (*domain.FailedTransfer, error) {
	t := &domain.FailedTransfer{}
	query := `SELECT ` + transferColumns + ` FROM failed_transfers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.BookingID, &t.AgreementID, &t.PaymentRef, &t.DestinationRef, &t.AmountCents, &t.Currency,
		&t.CommissionRate, &t.CommissionCents, &t.NetCents, &t.Status, &t.RetryCount, &t.MaxRetries,
		&t.FailureReason, &t.TransferRef, &t.CreatedOn, &t.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transferRepository) ListPending(ctx context.Context, limit int) ([]domain.FailedTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM failed_transfers
	          WHERE status = $1 ORDER BY created_on ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, domain.TransferStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.FailedTransfer
	for rows.Next() {
		var t domain.FailedTransfer
		if err := rows.Scan(
			&t.ID, &t.BookingID, &t.AgreementID, &t.PaymentRef, &t.DestinationRef, &t.AmountCents, &t.Currency,
			&t.CommissionRate, &t.CommissionCents, &t.NetCents, &t.Status, &t.RetryCount, &t.MaxRetries,
			&t.FailureReason, &t.TransferRef, &t.CreatedOn, &t.UpdatedOn); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (r *transferRepository) Transition(ctx context.Context, id int64, from, to domain.TransferStatus) (bool, error) {
	query := `UPDATE failed_transfers SET status=$1, updated_on=$2 WHERE id=$3 AND status=$4`
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

func (r *transferRepository) MarkSucceeded(ctx context.Context, id int64, transferRef string) error {
	query := `UPDATE failed_transfers SET status=$1, transfer_ref=$2, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, domain.TransferStatusSucceeded, transferRef, time.Now(), id)
	return err
}

func (r *transferRepository) MarkFailedAttempt(ctx context.Context, id int64, reason string) error {
	query := `UPDATE failed_transfers SET status=$1, retry_count=retry_count+1, failure_reason=$2, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, domain.TransferStatusPending, reason, time.Now(), id)
	return err
}

func (r *transferRepository) MarkFailedPermanently(ctx context.Context, id int64, reason string) error {
	query := `UPDATE failed_transfers SET status=$1, failure_reason=$2, updated_on=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, domain.TransferStatusFailedPermanently, reason, time.Now(), id)
	return err
}
