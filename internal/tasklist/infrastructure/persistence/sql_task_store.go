// Package persistence provides task.Store implementations.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/ordo/internal/shared/application"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

const taskColumns = `id, title, subtitle, completed, position, created_at, updated_at`

// SQLTaskStore implements task.Store on SQLite or PostgreSQL.
// Queries are written with ? placeholders and rebound per driver.
type SQLTaskStore struct {
	conn database.Connection
	uow  *database.UnitOfWork
	now  func() time.Time
}

// NewSQLTaskStore creates a store over conn. The schema must already exist.
func NewSQLTaskStore(conn database.Connection) *SQLTaskStore {
	return &SQLTaskStore{
		conn: conn,
		uow:  database.NewUnitOfWork(conn),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// UnitOfWork returns the unit of work bound to this store's connection.
func (s *SQLTaskStore) UnitOfWork() *database.UnitOfWork {
	return s.uow
}

func (s *SQLTaskStore) q(query string) string {
	return database.Rebind(s.conn.Driver(), query)
}

func (s *SQLTaskStore) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, s.conn)
}

// Insert saves t. An explicit ID is checked and inserted in one transaction.
func (s *SQLTaskStore) Insert(ctx context.Context, t task.Task) (task.ID, error) {
	now := s.now()
	created := t.CreatedAt
	if created.IsZero() {
		created = now
	}

	if t.ID == 0 {
		var id int64
		err := s.exec(ctx).QueryRow(ctx,
			s.q(`INSERT INTO tasks (title, subtitle, completed, position, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			t.Title, t.Subtitle, s.completed(t.Completed), t.Position, formatTime(created), formatTime(now),
		).Scan(&id)
		if err != nil {
			return 0, task.Unavailable("insert task", err)
		}
		return task.ID(id), nil
	}

	err := application.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
		exists, err := s.exists(ctx, t.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: task %s already exists", task.ErrConstraintViolation, t.ID)
		}
		_, err = s.exec(ctx).Exec(ctx,
			s.q(`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			int64(t.ID), t.Title, t.Subtitle, s.completed(t.Completed), t.Position, formatTime(created), formatTime(now),
		)
		if err != nil {
			return task.Unavailable("insert task", err)
		}
		return s.syncIdentity(ctx)
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

// Update rewrites title, subtitle and completion.
func (s *SQLTaskStore) Update(ctx context.Context, t task.Task) error {
	res, err := s.exec(ctx).Exec(ctx,
		s.q(`UPDATE tasks SET title = ?, subtitle = ?, completed = ?, updated_at = ? WHERE id = ?`),
		t.Title, t.Subtitle, s.completed(t.Completed), formatTime(s.now()), int64(t.ID),
	)
	if err != nil {
		return task.Unavailable("update task", err)
	}
	return requireAffected(res, t.ID)
}

// Delete removes a task; missing tasks are ignored.
func (s *SQLTaskStore) Delete(ctx context.Context, id task.ID) error {
	if _, err := s.exec(ctx).Exec(ctx, s.q(`DELETE FROM tasks WHERE id = ?`), int64(id)); err != nil {
		return task.Unavailable("delete task", err)
	}
	return nil
}

// MaxPosition returns the largest position, or ok=false on an empty table.
func (s *SQLTaskStore) MaxPosition(ctx context.Context) (int64, bool, error) {
	var max *int64
	if err := s.exec(ctx).QueryRow(ctx, `SELECT MAX(position) FROM tasks`).Scan(&max); err != nil {
		return 0, false, task.Unavailable("max position", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// Page returns tasks ordered by position, then id.
func (s *SQLTaskStore) Page(ctx context.Context, limit, offset int) ([]task.Task, error) {
	if err := task.ValidatePage(limit, offset); err != nil {
		return nil, err
	}

	rows, err := s.exec(ctx).Query(ctx,
		s.q(`SELECT `+taskColumns+` FROM tasks ORDER BY position ASC, id ASC LIMIT ? OFFSET ?`),
		limit, offset,
	)
	if err != nil {
		return nil, task.Unavailable("page tasks", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0, limit)
	for rows.Next() {
		t, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, task.Unavailable("page tasks", err)
	}
	return tasks, nil
}

// SetPosition changes only the position column.
func (s *SQLTaskStore) SetPosition(ctx context.Context, id task.ID, position int64) error {
	res, err := s.exec(ctx).Exec(ctx,
		s.q(`UPDATE tasks SET position = ? WHERE id = ?`),
		position, int64(id),
	)
	if err != nil {
		return task.Unavailable("set position", err)
	}
	return requireAffected(res, id)
}

// syncIdentity moves the PostgreSQL identity past explicitly inserted ids.
// SQLite's AUTOINCREMENT tracks them on its own.
func (s *SQLTaskStore) syncIdentity(ctx context.Context) error {
	if s.conn.Driver() != database.DriverPostgres {
		return nil
	}
	_, err := s.exec(ctx).Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('tasks', 'id'), (SELECT MAX(id) FROM tasks))`)
	if err != nil {
		return task.Unavailable("sync task identity", err)
	}
	return nil
}

func (s *SQLTaskStore) exists(ctx context.Context, id task.ID) (bool, error) {
	var n int
	err := s.exec(ctx).QueryRow(ctx, s.q(`SELECT COUNT(*) FROM tasks WHERE id = ?`), int64(id)).Scan(&n)
	if err != nil {
		return false, task.Unavailable("check task", err)
	}
	return n > 0, nil
}

// completed adapts the flag to the column type: INTEGER on SQLite, BOOLEAN on PostgreSQL.
func (s *SQLTaskStore) completed(v bool) any {
	if s.conn.Driver() == database.DriverPostgres {
		return v
	}
	if v {
		return 1
	}
	return 0
}

func (s *SQLTaskStore) scan(row database.Row) (task.Task, error) {
	var (
		t                    task.Task
		id                   int64
		createdAt, updatedAt string
	)

	var err error
	if s.conn.Driver() == database.DriverPostgres {
		err = row.Scan(&id, &t.Title, &t.Subtitle, &t.Completed, &t.Position, &createdAt, &updatedAt)
	} else {
		var completed int64
		err = row.Scan(&id, &t.Title, &t.Subtitle, &completed, &t.Position, &createdAt, &updatedAt)
		t.Completed = completed != 0
	}
	if err != nil {
		return task.Task{}, task.Unavailable("scan task", err)
	}

	t.ID = task.ID(id)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return task.Task{}, fmt.Errorf("invalid created_at for task %d: %w", id, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return task.Task{}, fmt.Errorf("invalid updated_at for task %d: %w", id, err)
	}
	return t, nil
}

func requireAffected(res database.Result, id task.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return task.Unavailable("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
