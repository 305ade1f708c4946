// Package synchronizer keeps an in-memory, user-ordered view of the task list
// consistent with the store while edits, drags and page loads interleave.
package synchronizer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/felixgeelhaar/ordo/internal/shared/application"
	"github.com/felixgeelhaar/ordo/internal/shared/domain"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/pager"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/ordering"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

// Options configures a Synchronizer. Zero values select defaults.
type Options struct {
	PageSize int
	// UnitOfWork makes position batches and inserts transactional.
	UnitOfWork application.UnitOfWork
	Publisher  eventbus.Publisher
	Metrics    observability.Metrics
	Logger     *slog.Logger
}

// Synchronizer owns the view of the task list. All mutating operations are
// serialized; page loads are additionally single-flight.
type Synchronizer struct {
	store     task.Store
	pager     *pager.Pager
	engine    *ordering.Engine
	uow       application.UnitOfWork
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger

	mu    sync.Mutex
	tasks []task.Task

	loading atomic.Bool

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a synchronizer with an empty view. Call LoadNextPage to fill it.
func New(store task.Store, opts Options) *Synchronizer {
	logger := observability.LoggerOrDefault(opts.Logger).With("component", "synchronizer")
	publisher := opts.Publisher
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}

	return &Synchronizer{
		store:     store,
		pager:     pager.New(store, opts.PageSize),
		engine:    ordering.NewEngine(store, opts.UnitOfWork, logger),
		uow:       opts.UnitOfWork,
		publisher: publisher,
		metrics:   observability.OrNoop(opts.Metrics),
		logger:    logger,
		subs:      make(map[int]chan Snapshot),
	}
}

// PageSize returns the pager's page size.
func (s *Synchronizer) PageSize() int {
	return s.pager.PageSize()
}

// Status reports whether a page load is in flight. It never blocks.
func (s *Synchronizer) Status() Status {
	if s.loading.Load() {
		return StatusLoading
	}
	return StatusIdle
}

// Snapshot returns a copy of the current view.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Tasks returns a copy of the tasks in view order.
func (s *Synchronizer) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks in view.
func (s *Synchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// IndexOf returns the view index of id, or -1.
func (s *Synchronizer) IndexOf(id task.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id)
}

// Get returns the task with id from the view.
func (s *Synchronizer) Get(id task.ID) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return task.Task{}, false
}

// IsLast reports whether the whole list has been loaded.
func (s *Synchronizer) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.IsLast()
}

// LoadNextPage appends the next page to the view. A call made while another
// load is running, or after the end of the list, is skipped rather than
// queued. If the page repeats tasks already in view the order has drifted
// underneath the cursor and the view is rebuilt with Reconcile.
func (s *Synchronizer) LoadNextPage(ctx context.Context) (PageOutcome, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return PageOutcome{Skipped: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pager.IsLast() {
		s.loading.Store(false)
		return PageOutcome{Skipped: true, IsLast: true}, nil
	}

	s.notifyLocked()
	defer func() {
		s.loading.Store(false)
		s.notifyLocked()
	}()

	res, err := s.pager.LoadNext(ctx, s.hasLocked)
	if err != nil {
		s.logger.WarnContext(ctx, "page load failed", "offset", s.pager.Offset(), "error", err)
		return PageOutcome{}, err
	}
	s.metrics.Counter(observability.MetricPagesLoaded, 1)

	out := PageOutcome{Appended: len(res.Appended), Filtered: res.Filtered, IsLast: res.IsLast}
	if res.Filtered > 0 {
		s.logger.InfoContext(ctx, "order drifted between pages, reconciling", "filtered", res.Filtered)
		before := len(s.tasks)
		if err := s.reconcileLocked(ctx, before+len(res.Appended)); err != nil {
			return PageOutcome{}, err
		}
		out.Appended = max(len(s.tasks)-before, 0)
		out.IsLast = s.pager.IsLast()
		out.Reconciled = true
		return out, nil
	}

	s.tasks = append(s.tasks, res.Appended...)
	return out, nil
}

// Reconcile rebuilds the view from the start of the list, reading at least
// as many tasks as the view currently holds.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.reconcileLocked(ctx, len(s.tasks))
	s.notifyLocked()
	return err
}

// reconcileLocked resets the pager and reads whole pages until target tasks
// are covered or the list ends. On a read error the view keeps the pages
// read so far, which matches the pager's cursor.
func (s *Synchronizer) reconcileLocked(ctx context.Context, target int) error {
	s.metrics.Counter(observability.MetricReconciliations, 1)
	s.pager.Reset()

	fresh := make([]task.Task, 0, target)
	seen := make(map[task.ID]struct{}, target)
	have := func(id task.ID) bool {
		_, ok := seen[id]
		return ok
	}

	for first := true; first || (len(fresh) < target && !s.pager.IsLast()); first = false {
		res, err := s.pager.LoadNext(ctx, have)
		if err != nil {
			s.tasks = fresh
			s.logger.WarnContext(ctx, "reconciliation interrupted", "loaded", len(fresh), "error", err)
			return err
		}
		for _, t := range res.Appended {
			seen[t.ID] = struct{}{}
			fresh = append(fresh, t)
		}
	}

	s.tasks = fresh
	return nil
}

// AddTask appends a new task after every existing one and reloads the view.
func (s *Synchronizer) AddTask(ctx context.Context, title, subtitle string) (task.Task, error) {
	t, err := task.New(title, subtitle)
	if err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = application.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
		maxPos, ok, err := s.store.MaxPosition(ctx)
		if err != nil {
			return err
		}
		t.Position = task.NextPosition(maxPos, ok)
		t.ID, err = s.store.Insert(ctx, t)
		return err
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to add task: %w", err)
	}

	s.logger.InfoContext(ctx, "task added", "task_id", t.ID, "position", t.Position)
	s.publish(ctx, task.NewCreatedEvent(t))

	err = s.reconcileLocked(ctx, len(s.tasks))
	s.notifyLocked()
	if err != nil {
		return t, fmt.Errorf("task added but view refresh failed: %w", err)
	}
	if i := s.indexLocked(t.ID); i >= 0 {
		t = s.tasks[i]
	}
	return t, nil
}

// UpdateTask saves new content for t and replaces it in the view, keeping
// the view's position.
func (s *Synchronizer) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t = t.WithContent(t.Title, t.Subtitle)
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, t)
}

// EditContent replaces the title and subtitle of a task in view. Every other
// field comes from the current view entry, so a completion toggle made since
// the caller read the task is kept.
func (s *Synchronizer) EditContent(ctx context.Context, id task.ID, title, subtitle string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return task.Task{}, fmt.Errorf("%w: %s is not in view", task.ErrNotFound, id)
	}
	t := s.tasks[i].WithContent(title, subtitle)
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	return s.updateLocked(ctx, t)
}

// ToggleCompleted flips the completion flag of a task in view.
func (s *Synchronizer) ToggleCompleted(ctx context.Context, id task.ID) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return task.Task{}, fmt.Errorf("%w: %s is not in view", task.ErrNotFound, id)
	}
	return s.updateLocked(ctx, s.tasks[i].Toggled())
}

func (s *Synchronizer) updateLocked(ctx context.Context, t task.Task) (task.Task, error) {
	if err := s.store.Update(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	if i := s.indexLocked(t.ID); i >= 0 {
		t.Position = s.tasks[i].Position
		t.CreatedAt = s.tasks[i].CreatedAt
		s.tasks[i] = t
	}

	s.publish(ctx, task.NewUpdatedEvent(t))
	s.notifyLocked()
	return t, nil
}

// DeleteTask removes a task and reloads the view so the cursor matches the
// shorter list.
func (s *Synchronizer) DeleteTask(ctx context.Context, id task.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if i := s.indexLocked(id); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}

	s.logger.InfoContext(ctx, "task deleted", "task_id", id)
	s.publish(ctx, task.NewDeletedEvent(id))

	err := s.reconcileLocked(ctx, len(s.tasks))
	s.notifyLocked()
	if err != nil {
		return fmt.Errorf("task deleted but view refresh failed: %w", err)
	}
	return nil
}

// Reorder applies a caller-supplied order of the tasks in view. newSequence
// must contain exactly the tasks in view; only their order is taken from it.
// The view takes the new order even if persisting positions fails.
func (s *Synchronizer) Reorder(ctx context.Context, newSequence []task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ordering.CheckUnique(newSequence); err != nil {
		return err
	}
	if len(newSequence) != len(s.tasks) {
		return fmt.Errorf("%w: reorder of %d tasks, view holds %d", task.ErrInvalidArgument, len(newSequence), len(s.tasks))
	}

	seq := make([]task.Task, len(newSequence))
	for i, t := range newSequence {
		j := s.indexLocked(t.ID)
		if j < 0 {
			return fmt.Errorf("%w: %s is not in view", task.ErrInvalidArgument, t.ID)
		}
		seq[i] = s.tasks[j]
	}

	relabelled, changes := ordering.Relabel(seq)
	s.tasks = relabelled
	s.notifyLocked()
	return s.persistLocked(ctx, changes)
}

// MoveWithinView moves the task at from to to. The view changes and
// subscribers are notified before positions are written; a failed write is
// returned and the view is not rolled back.
func (s *Synchronizer) MoveWithinView(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(ctx, from, to)
}

// StepWithinView moves the task with id step rows down (positive) or up
// (negative), clamped to the view. The index is resolved under the same lock
// as the move, so a concurrent delete or reconcile cannot redirect it to
// another task. It reports false when id is not in view or is already at the
// edge.
func (s *Synchronizer) StepWithinView(ctx context.Context, id task.ID, step int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.indexLocked(id)
	if cur < 0 {
		return false, nil
	}
	target := min(max(cur+step, 0), len(s.tasks)-1)
	if target == cur {
		return false, nil
	}
	return true, s.moveLocked(ctx, cur, target)
}

func (s *Synchronizer) moveLocked(ctx context.Context, from, to int) error {
	moved, err := ordering.Move(s.tasks, from, to)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}

	relabelled, changes := ordering.Relabel(moved)
	s.tasks = relabelled
	s.notifyLocked()
	return s.persistLocked(ctx, changes)
}

func (s *Synchronizer) persistLocked(ctx context.Context, changes []task.PositionChange) error {
	if len(changes) == 0 {
		return nil
	}
	if err := s.engine.Apply(ctx, changes); err != nil {
		s.metrics.Counter(observability.MetricPersistFailures, 1)
		return fmt.Errorf("failed to persist order: %w", err)
	}
	s.metrics.Counter(observability.MetricPositionsWritten, int64(len(changes)))
	s.publish(ctx, task.NewReorderedEvent(changes))
	return nil
}

// Subscribe returns a channel of snapshots. Delivery is latest-wins: a slow
// reader only sees the newest snapshot. The current view is sent at once.
// Call the returned function to unsubscribe; it closes the channel.
func (s *Synchronizer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	ch <- s.snapshotLocked()
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Synchronizer) notifyLocked() {
	snap := s.snapshotLocked()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:  slices.Clone(s.tasks),
		Status: s.Status(),
		IsLast: s.pager.IsLast(),
	}
}

func (s *Synchronizer) indexLocked(id task.ID) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

func (s *Synchronizer) hasLocked(id task.ID) bool {
	return s.indexLocked(id) >= 0
}

// publish emits a domain event. Failures are logged; the store is the source of truth.
func (s *Synchronizer) publish(ctx context.Context, event domain.DomainEvent) {
	application.ApplyEventMetadata([]domain.DomainEvent{event}, application.NewEventMetadata(ctx))
	if err := eventbus.PublishEvent(ctx, s.publisher, event); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "routing_key", event.RoutingKey(), "error", err)
		return
	}
	s.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
}
