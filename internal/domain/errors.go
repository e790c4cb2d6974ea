package domain

import (
	"errors"
	"fmt"
)

// Not-found sentinels for inputs that fail to resolve.
var (
	ErrServiceNotFound   = errors.New("service not found")
	ErrProviderNotFound  = errors.New("provider not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrAgreementNotFound = errors.New("mission agreement not found")
	ErrTransferNotFound  = errors.New("failed transfer record not found")
)

// ValidationError is bad input from a caller. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// PreconditionError means the record's state no longer matches what the
// operation expected, typically because a concurrent job or API call already
// handled it. Callers treat it as a benign no-op rather than a failure.
type PreconditionError struct {
	Entity   string
	ID       int64
	Expected string
	Actual   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s %d is %s, expected %s", e.Entity, e.ID, e.Actual, e.Expected)
}

// ProcessorTransientError is a network error or 5xx from the payment
// processor. Eligible for the transfer retry subsystem.
type ProcessorTransientError struct {
	Op  string
	Err error
}

func (e *ProcessorTransientError) Error() string {
	return fmt.Sprintf("processor %s failed transiently: %v", e.Op, e.Err)
}

func (e *ProcessorTransientError) Unwrap() error { return e.Err }

// ProcessorPermanentError is a definitive rejection from the processor, such
// as a declined card or a cancelled mandate. Never retried.
type ProcessorPermanentError struct {
	Op     string
	Code   string
	Detail string
}

func (e *ProcessorPermanentError) Error() string {
	return fmt.Sprintf("processor %s rejected (%s): %s", e.Op, e.Code, e.Detail)
}

// MaxRetriesExceededError is raised when a failed transfer has exhausted its
// retry budget. It is escalated to a human operator, never silently dropped.
type MaxRetriesExceededError struct {
	TransferID int64
	Retries    int32
}

func (e *MaxRetriesExceededError) Error() string {
	return fmt.Sprintf("transfer %d exceeded max retries (%d)", e.TransferID, e.Retries)
}

func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func IsTransient(err error) bool {
	var te *ProcessorTransientError
	return errors.As(err, &te)
}

func IsPermanent(err error) bool {
	var pe *ProcessorPermanentError
	return errors.As(err, &pe)
}

func IsMaxRetriesExceeded(err error) bool {
	var me *MaxRetriesExceededError
	return errors.As(err, &me)
}
