package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ordo/internal/shared/domain"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/eventbus"
)

type mockConsumer struct {
	eventTypes []string
	err        error

	mu     sync.Mutex
	events []*domain.Envelope
}

func (m *mockConsumer) EventTypes() []string {
	return m.eventTypes
}

func (m *mockConsumer) Handle(_ context.Context, event *domain.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockConsumer) received() []*domain.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Envelope(nil), m.events...)
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	registry.Register(&mockConsumer{eventTypes: []string{"tasklist.task.created", "tasklist.task.deleted"}})

	assert.Len(t, registry.GetConsumers("tasklist.task.created"), 1)
	assert.Len(t, registry.GetConsumers("tasklist.task.deleted"), 1)
	assert.Empty(t, registry.GetConsumers("tasklist.tasks.reordered"))
	assert.Equal(t, 2, registry.ConsumerCount())
}

func TestConsumerRegistry_WildcardConsumer(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	specific := &mockConsumer{eventTypes: []string{"tasklist.task.created"}}
	all := &mockConsumer{eventTypes: []string{eventbus.AllEvents}}
	registry.Register(specific)
	registry.Register(all)

	ctx := context.Background()
	require.NoError(t, registry.Dispatch(ctx, &domain.Envelope{EventID: uuid.New(), RoutingKey: "tasklist.task.created"}))
	require.NoError(t, registry.Dispatch(ctx, &domain.Envelope{EventID: uuid.New(), RoutingKey: "tasklist.task.deleted"}))

	assert.Len(t, specific.received(), 1)
	assert.Len(t, all.received(), 2)
}

func TestConsumerRegistry_DispatchCollectsErrors(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	a := &mockConsumer{eventTypes: []string{"k"}, err: errA}
	ok := &mockConsumer{eventTypes: []string{"k"}}
	b := &mockConsumer{eventTypes: []string{"k"}, err: errB}
	registry.Register(a)
	registry.Register(ok)
	registry.Register(b)

	err := registry.Dispatch(context.Background(), &domain.Envelope{RoutingKey: "k"})

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, ok.received(), 1, "later consumers still run")
	assert.Len(t, b.received(), 1)
}

func TestConsumerRegistry_NoConsumers(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(nil)
	assert.NoError(t, registry.Dispatch(context.Background(), &domain.Envelope{RoutingKey: "nobody.listens"}))
}
