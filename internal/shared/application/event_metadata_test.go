package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/ordo/internal/shared/domain"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

type recordedEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("uses correlation id from context", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "corr-1")

		metadata := NewEventMetadata(ctx)

		assert.Equal(t, "corr-1", metadata.CorrelationID)
		assert.NotEmpty(t, metadata.CausationID)
	})

	t.Run("generates ids without context", func(t *testing.T) {
		m1 := NewEventMetadata(context.Background())
		m2 := NewEventMetadata(context.Background())

		assert.NotEmpty(t, m1.CorrelationID)
		assert.NotEqual(t, m1.CorrelationID, m2.CorrelationID)
		assert.NotEqual(t, m1.CausationID, m2.CausationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	e1 := &recordedEvent{BaseEvent: domain.NewBaseEvent("1", "Task", "tasklist.task.created")}
	e2 := &recordedEvent{BaseEvent: domain.NewBaseEvent("2", "Task", "tasklist.task.deleted")}
	metadata := domain.EventMetadata{CorrelationID: "c", CausationID: "d"}

	ApplyEventMetadata([]domain.DomainEvent{e1, e2}, metadata)

	assert.Equal(t, metadata, e1.Metadata())
	assert.Equal(t, metadata, e2.Metadata())
}
