// Package ordering turns user permutations of the task list into position
// writes that keep the stored order total and collision free.
package ordering

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/felixgeelhaar/ordo/internal/shared/application"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// Move returns a copy of seq with the element at from reinserted at to.
// Both indices must lie in [0, len(seq)-1].
func Move(seq []task.Task, from, to int) ([]task.Task, error) {
	n := len(seq)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d -> %d in list of %d", task.ErrIndexOutOfRange, from, to, n)
	}

	out := slices.Clone(seq)
	if from == to {
		return out, nil
	}
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return out, nil
}

// Relabel assigns strictly increasing positions base, base+1, ... in sequence
// order, where base is the smallest position already held by seq. The block
// keeps its position range, so its order relative to tasks outside seq is
// unchanged. Only tasks whose position actually changed are returned as changes.
func Relabel(seq []task.Task) ([]task.Task, []task.PositionChange) {
	if len(seq) == 0 {
		return nil, nil
	}

	base := seq[0].Position
	for _, t := range seq[1:] {
		base = min(base, t.Position)
	}

	out := slices.Clone(seq)
	var changes []task.PositionChange
	for i := range out {
		want := base + int64(i)
		if out[i].Position != want {
			out[i].Position = want
			changes = append(changes, task.PositionChange{TaskID: out[i].ID, Position: want})
		}
	}
	return out, changes
}

// CheckUnique rejects sequences that mention a task twice.
func CheckUnique(seq []task.Task) error {
	seen := make(map[task.ID]struct{}, len(seq))
	for _, t := range seq {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %s", task.ErrDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// Engine persists relabelled positions through a task.Store.
type Engine struct {
	store  task.Store
	uow    application.UnitOfWork
	logger *slog.Logger
}

// NewEngine creates an engine. When uow is non-nil each batch of position
// writes runs in one unit of work; otherwise writes are applied one by one
// and a failure can leave earlier writes in place.
func NewEngine(store task.Store, uow application.UnitOfWork, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, uow: uow, logger: logger}
}

// Apply writes changes in order and stops at the first failure.
func (e *Engine) Apply(ctx context.Context, changes []task.PositionChange) error {
	if len(changes) == 0 {
		return nil
	}

	return application.WithUnitOfWork(ctx, e.uow, func(ctx context.Context) error {
		for i, c := range changes {
			if err := e.store.SetPosition(ctx, c.TaskID, c.Position); err != nil {
				e.logger.WarnContext(ctx, "position write failed",
					"task_id", c.TaskID,
					"written", i,
					"pending", len(changes)-i,
					"error", err,
				)
				return err
			}
		}
		return nil
	})
}

// Reorder relabels seq and persists the changed positions. The relabelled
// sequence is returned even when persistence fails.
func (e *Engine) Reorder(ctx context.Context, seq []task.Task) ([]task.Task, []task.PositionChange, error) {
	if err := CheckUnique(seq); err != nil {
		return nil, nil, err
	}
	relabelled, changes := Relabel(seq)
	return relabelled, changes, e.Apply(ctx, changes)
}

// MoveAndPersist moves one element and persists the resulting relabel.
// from == to issues no writes.
func (e *Engine) MoveAndPersist(ctx context.Context, seq []task.Task, from, to int) ([]task.Task, []task.PositionChange, error) {
	moved, err := Move(seq, from, to)
	if err != nil {
		return nil, nil, err
	}
	if from == to {
		return moved, nil, nil
	}
	return e.Reorder(ctx, moved)
}
