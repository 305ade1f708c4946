package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ordo/internal/shared/domain"
)

type testEvent struct {
	domain.BaseEvent
	Title string `json:"title"`
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	event := domain.NewBaseEvent("42", "Task", "tasklist.task.created")
	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "42", event.AggregateID())
	assert.Equal(t, "Task", event.AggregateType())
	assert.Equal(t, "tasklist.task.created", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
	assert.Empty(t, event.Metadata().CorrelationID)
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := domain.NewBaseEvent("1", "Task", "tasklist.task.updated")
	event.SetMetadata(domain.EventMetadata{CorrelationID: "corr", CausationID: "cause"})

	assert.Equal(t, "corr", event.Metadata().CorrelationID)
	assert.Equal(t, "cause", event.Metadata().CausationID)
}

func TestNewEnvelope(t *testing.T) {
	event := &testEvent{
		BaseEvent: domain.NewBaseEvent("7", "Task", "tasklist.task.created"),
		Title:     "Buy milk",
	}
	event.SetMetadata(domain.EventMetadata{CorrelationID: "corr-7"})

	env, err := domain.NewEnvelope(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), env.EventID)
	assert.Equal(t, "7", env.AggregateID)
	assert.Equal(t, "tasklist.task.created", env.RoutingKey)
	assert.Equal(t, "corr-7", env.Metadata.CorrelationID)
	assert.JSONEq(t, `{"title":"Buy milk"}`, string(env.Payload))

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded domain.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.True(t, env.OccurredAt.Equal(decoded.OccurredAt))
}
