package travel

import (
	"errors"
	"fmt"
)

// Kind classifies a persistence failure.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindConstraintViolation Kind = "constraint_violation"
	KindConnectivityFailure Kind = "connectivity_failure"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindStorageFailure      Kind = "storage_failure"
)

// Sentinel errors, one per Kind. A *PersistenceError matches the sentinel of
// its Kind under errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnectivityFailure = errors.New("connectivity failure")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrStorageFailure      = errors.New("storage failure")
)

var sentinels = map[Kind]error{
	KindNotFound:            ErrNotFound,
	KindConstraintViolation: ErrConstraintViolation,
	KindConnectivityFailure: ErrConnectivityFailure,
	KindConcurrencyConflict: ErrConcurrencyConflict,
	KindStorageFailure:      ErrStorageFailure,
}

// PersistenceError is returned by repository operations when the storage
// engine rejects or cannot complete a unit of work.
type PersistenceError struct {
	Op   string
	Kind Kind
	Err  error
}

// NewPersistenceError builds a PersistenceError. err may be nil.
func NewPersistenceError(op string, kind Kind, err error) *PersistenceError {
	return &PersistenceError{Op: op, Kind: kind, Err: err}
}

func (e *PersistenceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *PersistenceError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// IsKind reports whether err carries a PersistenceError of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// KindOf returns the Kind of the first PersistenceError in err's chain, or
// KindStorageFailure when there is none.
func KindOf(err error) Kind {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindStorageFailure
}

// violation builds the constraint_violation error used by Validate.
func violation(op, field, reason string) error {
	return NewPersistenceError(op, KindConstraintViolation, fmt.Errorf("%s %s", field, reason))
}
