package task

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match with errors.Is.
var (
	ErrNotFound            = errors.New("task not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// Validation failures, all of kind ErrInvalidArgument.
var (
	ErrEmptyTitle      = fmt.Errorf("%w: title cannot be empty", ErrInvalidArgument)
	ErrEmptySubtitle   = fmt.Errorf("%w: subtitle cannot be empty", ErrInvalidArgument)
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrInvalidArgument)
	ErrInvalidID       = fmt.Errorf("%w: invalid task id", ErrInvalidArgument)
	ErrDuplicateID     = fmt.Errorf("%w: duplicate task id in sequence", ErrInvalidArgument)
)

// Unavailable wraps a backend failure as ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// IsDomainError reports whether err is a caller-side error rather than a
// storage failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrConstraintViolation)
}
