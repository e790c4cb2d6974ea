package postgres

import (
	"context"
	"database/sql"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetServiceByID(ctx context.Context, id int64) (*domain.DetailingService, error) {
	s := &domain.DetailingService{}
	query := `SELECT id, provider_id, name, price_cents, duration_min, latitude, longitude
	          FROM detailing_services WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ProviderID, &s.Name, &s.PriceCents, &s.DurationMin, &s.Latitude, &s.Longitude)
	if err == sql.ErrNoRows {
		return nil, domain.ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	a := &domain.Account{}
	query := `SELECT id, role, name, email, COALESCE(payer_ref, ''), COALESCE(destination_ref, ''),
	                 COALESCE(device_token, ''), latitude, longitude
	          FROM accounts WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Role, &a.Name, &a.Email, &a.PayerRef, &a.DestinationRef,
		&a.DeviceToken, &a.Latitude, &a.Longitude)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
