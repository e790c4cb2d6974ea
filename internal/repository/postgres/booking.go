package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, customer_id, provider_id, service_id, gross_amount_cents, transport_fee_cents,
	currency, service_date, service_start, service_end, status, payment_status, payment_ref,
	transfer_ref, commission_rate, refunded_cents, COALESCE(cancel_reason, ''), created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (customer_id, provider_id, service_id, gross_amount_cents, transport_fee_cents,
	              currency, service_date, service_start, service_end, status, payment_status, payment_ref,
	              commission_rate, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	b.CreatedOn = now
	b.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query,
		b.CustomerID, b.ProviderID, b.ServiceID, b.GrossAmountCents, b.TransportFeeCents,
		b.Currency, b.ServiceDate, b.ServiceStart, b.ServiceEnd, b.Status, b.PaymentStatus, b.PaymentRef,
		b.CommissionRate, now, now).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceID, &b.GrossAmountCents, &b.TransportFeeCents,
		&b.Currency, &b.ServiceDate, &b.ServiceStart, &b.ServiceEnd, &b.Status, &b.PaymentStatus, &b.PaymentRef,
		&b.TransferRef, &b.CommissionRate, &b.RefundedCents, &b.CancelReason, &b.CreatedOn, &b.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, payment_status=$2, refunded_cents=$3, cancel_reason=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, b.Status, b.PaymentStatus, b.RefundedCents, b.CancelReason, time.Now(), b.ID)
	return err
}

func (r *bookingRepository) TransitionPayment(ctx context.Context, id int64, from, to domain.PaymentStatus, status domain.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET payment_status=$1, status=$2, updated_on=$3 WHERE id=$4 AND payment_status=$5`
	result, err := r.db.ExecContext(ctx, query, to, status, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *bookingRepository) SetTransferRef(ctx context.Context, id int64, ref string) (bool, error) {
	// transfer_ref is written at most once per booking.
	query := `UPDATE bookings SET transfer_ref=$1, payment_status=$2, updated_on=$3 WHERE id=$4 AND transfer_ref IS NULL`
	result, err := r.db.ExecContext(ctx, query, ref, domain.PaymentStatusTransferred, time.Now(), id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *bookingRepository) ListCaptureDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE payment_status = $1 AND service_end < $2
	          ORDER BY service_end ASC LIMIT $3`
	return r.list(ctx, query, domain.PaymentStatusPreauthorized, cutoff, limit)
}

func (r *bookingRepository) ListConfirmationExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE payment_status = $1 AND status = '` + string(domain.BookingStatusPreauthorized) + `' AND created_on < $2
	          ORDER BY created_on ASC LIMIT $3`
	return r.list(ctx, query, domain.PaymentStatusPreauthorized, cutoff, limit)
}

func (r *bookingRepository) ListTransferDue(ctx context.Context, cutoff time.Time, limit int) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE payment_status = $1 AND transfer_ref IS NULL AND service_end < $2
	          ORDER BY service_end ASC LIMIT $3`
	return r.list(ctx, query, domain.PaymentStatusPaid, cutoff, limit)
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceID, &b.GrossAmountCents, &b.TransportFeeCents,
			&b.Currency, &b.ServiceDate, &b.ServiceStart, &b.ServiceEnd, &b.Status, &b.PaymentStatus, &b.PaymentRef,
			&b.TransferRef, &b.CommissionRate, &b.RefundedCents, &b.CancelReason, &b.CreatedOn, &b.UpdatedOn); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
