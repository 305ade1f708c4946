package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// runStoreContract exercises the task.Store contract against a fresh, empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) task.Store) {
	ctx := context.Background()

	add := func(t *testing.T, s task.Store, title string) task.Task {
		t.Helper()
		max, ok, err := s.MaxPosition(ctx)
		require.NoError(t, err)
		tk := task.Task{Title: title, Subtitle: "sub " + title, Position: task.NextPosition(max, ok)}
		tk.ID, err = s.Insert(ctx, tk)
		require.NoError(t, err)
		return tk
	}

	all := func(t *testing.T, s task.Store) []task.Task {
		t.Helper()
		tasks, err := s.Page(ctx, 1000, 0)
		require.NoError(t, err)
		return tasks
	}

	t.Run("empty store has no max position", func(t *testing.T) {
		s := newStore(t)
		max, ok, err := s.MaxPosition(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, max)

		tasks, err := s.Page(ctx, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("insert assigns ids and appends", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "Buy milk")
		b := add(t, s, "Walk dog")

		assert.NotZero(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)

		max, ok, err := s.MaxPosition(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), max)

		got := all(t, s)
		require.Len(t, got, 2)
		assert.Equal(t, "Buy milk", got[0].Title)
		assert.Equal(t, "sub Buy milk", got[0].Subtitle)
		assert.Equal(t, int64(1), got[0].Position)
		assert.False(t, got[0].CreatedAt.IsZero())
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")
		require.NoError(t, s.Delete(ctx, a.ID))
		b := add(t, s, "b")
		assert.Greater(t, int64(b.ID), int64(a.ID))
	})

	t.Run("explicit duplicate id is a constraint violation", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")

		_, err := s.Insert(ctx, task.Task{ID: a.ID, Title: "dup", Subtitle: "dup", Position: 9})
		assert.ErrorIs(t, err, task.ErrConstraintViolation)

		id, err := s.Insert(ctx, task.Task{ID: a.ID + 100, Title: "x", Subtitle: "y", Position: 9})
		require.NoError(t, err)
		assert.Equal(t, a.ID+100, id)

		got := all(t, s)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID+100, got[1].ID)
		assert.Equal(t, "x", got[1].Title)
		assert.Equal(t, "y", got[1].Subtitle)
		assert.Equal(t, int64(9), got[1].Position)

		next := add(t, s, "after explicit")
		assert.Greater(t, int64(next.ID), int64(a.ID+100))
	})

	t.Run("update changes content but not position", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")
		add(t, s, "b")

		edited := a.WithContent("a2", "sub a2").Toggled()
		edited.Position = 99
		require.NoError(t, s.Update(ctx, edited))

		got := all(t, s)
		assert.Equal(t, "a2", got[0].Title)
		assert.True(t, got[0].Completed)
		assert.Equal(t, int64(1), got[0].Position)
	})

	t.Run("update missing task", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, task.Task{ID: 4242, Title: "x", Subtitle: "y"})
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")
		require.NoError(t, s.Delete(ctx, a.ID))
		require.NoError(t, s.Delete(ctx, a.ID))
		assert.Empty(t, all(t, s))
	})

	t.Run("set position reorders", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")
		b := add(t, s, "b")
		c := add(t, s, "c")

		require.NoError(t, s.SetPosition(ctx, a.ID, 3))
		require.NoError(t, s.SetPosition(ctx, b.ID, 1))
		require.NoError(t, s.SetPosition(ctx, c.ID, 2))

		assert.Equal(t, []task.ID{b.ID, c.ID, a.ID}, task.IDs(all(t, s)))
		assert.ErrorIs(t, s.SetPosition(ctx, 4242, 1), task.ErrNotFound)
	})

	t.Run("equal positions fall back to id order", func(t *testing.T) {
		s := newStore(t)
		a := add(t, s, "a")
		b := add(t, s, "b")
		require.NoError(t, s.SetPosition(ctx, b.ID, 1))

		assert.Equal(t, []task.ID{a.ID, b.ID}, task.IDs(all(t, s)))
	})

	t.Run("pages are ordered, bounded and repeatable", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 25; i++ {
			add(t, s, fmt.Sprintf("task %02d", i))
		}

		var sizes []int
		var seen []task.ID
		for offset := 0; ; offset += 10 {
			page, err := s.Page(ctx, 10, offset)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			sizes = append(sizes, len(page))
			seen = append(seen, task.IDs(page)...)

			again, err := s.Page(ctx, 10, offset)
			require.NoError(t, err)
			assert.Equal(t, page, again)
		}

		assert.Equal(t, []int{10, 10, 5}, sizes)
		assert.Equal(t, task.IDs(all(t, s)), seen)
	})

	t.Run("page arguments are validated", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Page(ctx, 0, 0)
		assert.ErrorIs(t, err, task.ErrInvalidArgument)
		_, err = s.Page(ctx, 10, -1)
		assert.ErrorIs(t, err, task.ErrInvalidArgument)
	})
}
