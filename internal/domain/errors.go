package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by lookups for unknown players or matches and
// surfaces as a 404.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPlayers is returned when a match cannot be formed from
// the online pool.
var ErrInsufficientPlayers = errors.New("not enough online players")

// ValidationError rejects a malformed or incomplete match submission.
// No state is mutated when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PersistenceError marks a storage failure after which no partial
// match or player update may remain.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
