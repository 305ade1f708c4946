package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

// BreakerConfig configures ResilientTaskStore.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive storage failures that opens the breaker.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// ResilientTaskStore guards a task.Store with a circuit breaker. Only
// storage failures count against the breaker; while it is open every call
// fails fast with task.ErrStorageUnavailable.
type ResilientTaskStore struct {
	next    task.Store
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewResilientTaskStore wraps next.
func NewResilientTaskStore(next task.Store, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *ResilientTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	metrics = observability.OrNoop(metrics)
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "task-store",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || task.IsDomainError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if to == gobreaker.StateOpen {
				metrics.Counter(observability.MetricBreakerOpened, 1)
			}
		},
	}

	return &ResilientTaskStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

// State reports the breaker state.
func (s *ResilientTaskStore) State() gobreaker.State {
	return s.breaker.State()
}

func (s *ResilientTaskStore) execute(op string, fn func() (any, error)) (any, error) {
	result, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %w", task.ErrStorageUnavailable, op, err)
	}
	return result, err
}

func (s *ResilientTaskStore) Insert(ctx context.Context, t task.Task) (task.ID, error) {
	result, err := s.execute("insert task", func() (any, error) {
		return s.next.Insert(ctx, t)
	})
	if err != nil {
		return 0, err
	}
	return result.(task.ID), nil
}

func (s *ResilientTaskStore) Update(ctx context.Context, t task.Task) error {
	_, err := s.execute("update task", func() (any, error) {
		return nil, s.next.Update(ctx, t)
	})
	return err
}

func (s *ResilientTaskStore) Delete(ctx context.Context, id task.ID) error {
	_, err := s.execute("delete task", func() (any, error) {
		return nil, s.next.Delete(ctx, id)
	})
	return err
}

type maxPosition struct {
	value int64
	ok    bool
}

func (s *ResilientTaskStore) MaxPosition(ctx context.Context) (int64, bool, error) {
	result, err := s.execute("max position", func() (any, error) {
		v, ok, err := s.next.MaxPosition(ctx)
		return maxPosition{value: v, ok: ok}, err
	})
	if err != nil {
		return 0, false, err
	}
	mp := result.(maxPosition)
	return mp.value, mp.ok, nil
}

func (s *ResilientTaskStore) Page(ctx context.Context, limit, offset int) ([]task.Task, error) {
	result, err := s.execute("page tasks", func() (any, error) {
		return s.next.Page(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return result.([]task.Task), nil
}

func (s *ResilientTaskStore) SetPosition(ctx context.Context, id task.ID, position int64) error {
	_, err := s.execute("set position", func() (any, error) {
		return nil, s.next.SetPosition(ctx, id, position)
	})
	return err
}
