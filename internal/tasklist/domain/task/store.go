package task

import (
	"context"
	"fmt"
)

// Store persists tasks and serves them in position order.
//
// Implementations are safe for concurrent use, never retry, and report
// backend failures as ErrStorageUnavailable.
type Store interface {
	// Insert saves t and returns its ID. A zero ID is assigned by the store;
	// an explicit ID that already exists fails with ErrConstraintViolation.
	Insert(ctx context.Context, t Task) (ID, error)

	// Update replaces title, subtitle and completion of an existing task.
	// Position is left alone. Missing tasks yield ErrNotFound.
	Update(ctx context.Context, t Task) error

	// Delete removes the task. Deleting a missing task is not an error.
	Delete(ctx context.Context, id ID) error

	// MaxPosition returns the largest stored position; ok is false when empty.
	MaxPosition(ctx context.Context) (max int64, ok bool, err error)

	// Page returns up to limit tasks after skipping offset, ordered by
	// position then id.
	Page(ctx context.Context, limit, offset int) ([]Task, error)

	// SetPosition changes only the position of a task.
	SetPosition(ctx context.Context, id ID, position int64) error
}

// ValidatePage checks Page arguments.
func ValidatePage(limit, offset int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: page limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: page offset must not be negative, got %d", ErrInvalidArgument, offset)
	}
	return nil
}

// NextPosition is the position a new task takes: one past the current
// maximum, or 1 on an empty store.
func NextPosition(max int64, ok bool) int64 {
	if !ok {
		return 1
	}
	return max + 1
}
