package task

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ordo/internal/shared/domain"
)

func TestNew(t *testing.T) {
	t.Run("trims and keeps content", func(t *testing.T) {
		got, err := New("  Buy milk ", " two litres ")
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, "two litres", got.Subtitle)
		assert.Zero(t, got.ID)
		assert.False(t, got.Completed)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := New("   ", "subtitle")
		assert.ErrorIs(t, err, ErrEmptyTitle)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("rejects blank subtitle", func(t *testing.T) {
		_, err := New("title", "")
		assert.ErrorIs(t, err, ErrEmptySubtitle)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestTask_CopyHelpers(t *testing.T) {
	original := Task{ID: 4, Title: "a", Subtitle: "b", Position: 9}

	edited := original.WithContent(" c ", "d ")
	assert.Equal(t, "c", edited.Title)
	assert.Equal(t, "d", edited.Subtitle)
	assert.Equal(t, int64(9), edited.Position)
	assert.Equal(t, "a", original.Title)

	toggled := original.Toggled()
	assert.True(t, toggled.Completed)
	assert.False(t, toggled.Toggled().Completed)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	for _, bad := range []string{"", "x", "0", "-3"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument, bad)
	}
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []ID{3, 1, 2}, IDs([]Task{{ID: 3}, {ID: 1}, {ID: 2}}))
	assert.Empty(t, IDs(nil))
}

func TestValidatePage(t *testing.T) {
	assert.NoError(t, ValidatePage(10, 0))
	assert.ErrorIs(t, ValidatePage(0, 0), ErrInvalidArgument)
	assert.ErrorIs(t, ValidatePage(10, -1), ErrInvalidArgument)
}

func TestNextPosition(t *testing.T) {
	assert.Equal(t, int64(1), NextPosition(0, false))
	assert.Equal(t, int64(8), NextPosition(7, true))
	assert.Equal(t, int64(1), NextPosition(0, true))
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Unavailable("insert", cause)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert")
	assert.False(t, IsDomainError(err))

	assert.True(t, IsDomainError(ErrNotFound))
	assert.True(t, IsDomainError(ErrEmptyTitle))
	assert.True(t, IsDomainError(ErrConstraintViolation))
}

func TestEvents(t *testing.T) {
	created := NewCreatedEvent(Task{ID: 5, Title: "t", Subtitle: "s", Position: 3})
	assert.Equal(t, RoutingKeyCreated, created.RoutingKey())
	assert.Equal(t, "5", created.AggregateID())

	env, err := domain.NewEnvelope(created)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, float64(5), payload["task_id"])
	assert.Equal(t, float64(3), payload["position"])

	assert.Equal(t, RoutingKeyUpdated, NewUpdatedEvent(Task{ID: 1}).RoutingKey())
	assert.Equal(t, RoutingKeyDeleted, NewDeletedEvent(2).RoutingKey())

	reordered := NewReorderedEvent([]PositionChange{{TaskID: 1, Position: 2}})
	assert.Equal(t, RoutingKeyReordered, reordered.RoutingKey())
	assert.Equal(t, ListAggregateID, reordered.AggregateID())
}
