package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// RedisTaskStore implements task.Store with a sorted set for order and one
// hash per task:
//
//	{prefix}:order      ZSET  score=position member=zero-padded id
//	{prefix}:task:{id}  HASH  title subtitle completed created_at updated_at
//	{prefix}:seq        STRING id counter
//
// Ids are zero padded so equal scores fall back to numeric id order.
// Read-check-write operations run under WATCH; a conflicting writer makes
// the call fail with task.ErrStorageUnavailable.
type RedisTaskStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisTaskStore creates a store under the given key prefix.
func NewRedisTaskStore(client *redis.Client, prefix string) *RedisTaskStore {
	if prefix == "" {
		prefix = "ordo"
	}
	return &RedisTaskStore{
		client: client,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisTaskStore) orderKey() string { return s.prefix + ":order" }
func (s *RedisTaskStore) seqKey() string   { return s.prefix + ":seq" }

func (s *RedisTaskStore) taskKey(id task.ID) string {
	return fmt.Sprintf("%s:task:%d", s.prefix, int64(id))
}

func member(id task.ID) string {
	return fmt.Sprintf("%020d", int64(id))
}

func parseMember(m string) (task.ID, error) {
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order member %q: %w", m, err)
	}
	return task.ID(n), nil
}

// Insert saves t, drawing a new id from the counter when t.ID is zero.
func (s *RedisTaskStore) Insert(ctx context.Context, t task.Task) (task.ID, error) {
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if t.ID == 0 {
		id, err := s.client.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return 0, task.Unavailable("allocate task id", err)
		}
		t.ID = task.ID(id)
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.write(ctx, pipe, t)
			return nil
		})
		if err != nil {
			return 0, task.Unavailable("insert task", err)
		}
		return t.ID, nil
	}

	key := s.taskKey(t.ID)
	err := s.watch(ctx, "insert task", func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: task %s already exists", task.ErrConstraintViolation, t.ID)
		}
		seq, err := tx.Get(ctx, s.seqKey()).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.write(ctx, pipe, t)
			if int64(t.ID) > seq {
				pipe.Set(ctx, s.seqKey(), int64(t.ID), 0)
			}
			return nil
		})
		return err
	}, key, s.seqKey())
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *RedisTaskStore) write(ctx context.Context, pipe redis.Pipeliner, t task.Task) {
	pipe.HSet(ctx, s.taskKey(t.ID), map[string]any{
		"title":      t.Title,
		"subtitle":   t.Subtitle,
		"completed":  boolField(t.Completed),
		"created_at": formatTime(t.CreatedAt),
		"updated_at": formatTime(t.UpdatedAt),
	})
	pipe.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(t.Position), Member: member(t.ID)})
}

// Update rewrites title, subtitle and completion of an existing task.
func (s *RedisTaskStore) Update(ctx context.Context, t task.Task) error {
	key := s.taskKey(t.ID)
	return s.watch(ctx, "update task", func(tx *redis.Tx) error {
		if err := s.requireExists(ctx, tx, t.ID); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]any{
				"title":      t.Title,
				"subtitle":   t.Subtitle,
				"completed":  boolField(t.Completed),
				"updated_at": formatTime(s.now()),
			})
			return nil
		})
		return err
	}, key)
}

// Delete removes the hash and the order entry.
func (s *RedisTaskStore) Delete(ctx context.Context, id task.ID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.taskKey(id))
		pipe.ZRem(ctx, s.orderKey(), member(id))
		return nil
	})
	if err != nil {
		return task.Unavailable("delete task", err)
	}
	return nil
}

// MaxPosition reads the highest score in the order set.
func (s *RedisTaskStore) MaxPosition(ctx context.Context) (int64, bool, error) {
	top, err := s.client.ZRevRangeWithScores(ctx, s.orderKey(), 0, 0).Result()
	if err != nil {
		return 0, false, task.Unavailable("max position", err)
	}
	if len(top) == 0 {
		return 0, false, nil
	}
	return int64(top[0].Score), true, nil
}

// pageAttempts bounds how often Page retries when the order set changes
// under it.
const pageAttempts = 3

// Page reads a rank range from the order set and the matching hashes. The
// order set is watched, so a page never mixes ranks from before a concurrent
// write with hashes from after it; a page that keeps losing the race is
// reported as unavailable instead of coming back short.
func (s *RedisTaskStore) Page(ctx context.Context, limit, offset int) ([]task.Task, error) {
	if err := task.ValidatePage(limit, offset); err != nil {
		return nil, err
	}

	for range pageAttempts {
		var tasks []task.Task
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			var err error
			tasks, err = s.readPage(ctx, tx, limit, offset)
			return err
		}, s.orderKey())
		switch {
		case err == nil:
			return tasks, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case task.IsDomainError(err):
			return nil, err
		default:
			return nil, task.Unavailable("page tasks", err)
		}
	}
	return nil, task.Unavailable("page tasks",
		fmt.Errorf("order changed during %d consecutive reads", pageAttempts))
}

func (s *RedisTaskStore) readPage(ctx context.Context, tx *redis.Tx, limit, offset int) ([]task.Task, error) {
	entries, err := tx.ZRangeWithScores(ctx, s.orderKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []task.Task{}, nil
	}

	ids := make([]task.ID, len(entries))
	for i, e := range entries {
		m, _ := e.Member.(string)
		if ids[i], err = parseMember(m); err != nil {
			return nil, err
		}
	}

	cmds := make([]*redis.MapStringStringCmd, len(entries))
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.taskKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(entries))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			return nil, fmt.Errorf("task %s is ranked but has no data", ids[i])
		}
		t, err := taskFromHash(ids[i], int64(entries[i].Score), fields)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// SetPosition rescores an existing task.
func (s *RedisTaskStore) SetPosition(ctx context.Context, id task.ID, position int64) error {
	key := s.taskKey(id)
	return s.watch(ctx, "set position", func(tx *redis.Tx) error {
		if err := s.requireExists(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(position), Member: member(id)})
			return nil
		})
		return err
	}, key)
}

func (s *RedisTaskStore) requireExists(ctx context.Context, tx *redis.Tx, id task.ID) error {
	n, err := tx.Exists(ctx, s.taskKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	return nil
}

// watch runs fn in an optimistic transaction. Domain errors pass through;
// everything else, including a lost WATCH race, is storage unavailability.
func (s *RedisTaskStore) watch(ctx context.Context, op string, fn func(*redis.Tx) error, keys ...string) error {
	err := s.client.Watch(ctx, fn, keys...)
	if err == nil || task.IsDomainError(err) {
		return err
	}
	return task.Unavailable(op, err)
}

func taskFromHash(id task.ID, position int64, fields map[string]string) (task.Task, error) {
	t := task.Task{
		ID:        id,
		Title:     fields["title"],
		Subtitle:  fields["subtitle"],
		Completed: fields["completed"] == "1",
		Position:  position,
	}
	var err error
	if t.CreatedAt, err = parseTime(fields["created_at"]); err != nil {
		return task.Task{}, fmt.Errorf("invalid created_at for task %s: %w", id, err)
	}
	if t.UpdatedAt, err = parseTime(fields["updated_at"]); err != nil {
		return task.Task{}, fmt.Errorf("invalid updated_at for task %s: %w", id, err)
	}
	return t, nil
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
