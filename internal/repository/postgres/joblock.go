package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/repository"
)

type jobLockRepository struct {
	db *sql.DB
}

func NewJobLockRepository(db *sql.DB) repository.JobLockRepository {
	return &jobLockRepository{db: db}
}

// Acquire takes the named lock via a single atomic conditional upsert: the
// insert wins if no row exists, the conflict branch wins only when the
// previous lock expired or the caller already holds it. Zero rows affected
// means another live holder owns the lock.
func (r *jobLockRepository) Acquire(ctx context.Context, jobName, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	query := `INSERT INTO job_locks (job_name, holder, locked_until, acquired_on)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (job_name) DO UPDATE
	          SET holder = EXCLUDED.holder, locked_until = EXCLUDED.locked_until, acquired_on = EXCLUDED.acquired_on
	          WHERE job_locks.locked_until < $4 OR job_locks.holder = EXCLUDED.holder`
	result, err := r.db.ExecContext(ctx, query, jobName, holder, now.Add(ttl), now)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *jobLockRepository) Release(ctx context.Context, jobName, holder string) error {
	query := `UPDATE job_locks SET locked_until = $1 WHERE job_name = $2 AND holder = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now(), jobName, holder)
	return err
}
