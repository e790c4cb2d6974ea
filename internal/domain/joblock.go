package domain

import "time"

// JobLock is the leader-election record for a named scheduled job. An
// instance owns the job while LockedUntil is in the future; expired locks can
// be taken over by any instance via an atomic conditional write.
type JobLock struct {
	JobName     string    `json:"job_name"`
	Holder      string    `json:"holder"` // instance identifier
	LockedUntil time.Time `json:"locked_until"`
	AcquiredOn  time.Time `json:"acquired_on"`
}
