package postgres

import (
	"database/sql"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.BookingRepository
	repository.CatalogRepository
	repository.AccountRepository
	repository.MissionRepository
	repository.TransferRepository
	repository.NotificationRepository
	repository.JobLockRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		BookingRepository:      NewBookingRepository(db),
		CatalogRepository:      NewCatalogRepository(db),
		AccountRepository:      NewAccountRepository(db),
		MissionRepository:      NewMissionRepository(db),
		TransferRepository:     NewTransferRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		JobLockRepository:      NewJobLockRepository(db),
	}
}
