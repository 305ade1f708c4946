package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/ordo/adapter/cli"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/synchronizer"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

type emptyInput struct{}

type taskAddInput struct {
	Title    string `json:"title" jsonschema:"required"`
	Subtitle string `json:"subtitle" jsonschema:"required"`
}

type taskUpdateInput struct {
	ID       int64  `json:"id" jsonschema:"required"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

type taskIDInput struct {
	ID int64 `json:"id" jsonschema:"required"`
}

type taskMoveInput struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type taskReorderInput struct {
	IDs []int64 `json:"ids" jsonschema:"required"`
}

type viewResult struct {
	Tasks   []task.Task `json:"tasks"`
	IsLast  bool        `json:"is_last"`
	Loading bool        `json:"loading"`
}

type pageResult struct {
	Appended   int        `json:"appended"`
	Filtered   int        `json:"filtered"`
	Skipped    bool       `json:"skipped"`
	Reconciled bool       `json:"reconciled"`
	View       viewResult `json:"view"`
}

type deleteResult struct {
	ID      task.ID `json:"id"`
	Deleted bool    `json:"deleted"`
}

func newViewResult(snap synchronizer.Snapshot) viewResult {
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	return viewResult{
		Tasks:   tasks,
		IsLast:  snap.IsLast,
		Loading: snap.Status == synchronizer.StatusLoading,
	}
}

// taskTools holds the handlers behind the tasks.* tools. Every call that
// goes through the edit dialog uses its own dialog, since tool calls may
// arrive concurrently.
type taskTools struct {
	app *cli.App
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) error {
	t := &taskTools{app: deps.App}

	srv.Tool("tasks.list").
		Description("Show the loaded task view in order. Loads the first page if nothing is loaded yet").
		Handler(t.list)

	srv.Tool("tasks.next_page").
		Description("Load the next page of tasks into the view").
		Handler(t.nextPage)

	srv.Tool("tasks.add").
		Description("Add a task at the end of the list").
		Handler(t.add)

	srv.Tool("tasks.update").
		Description("Change the title and/or subtitle of a loaded task").
		Handler(t.update)

	srv.Tool("tasks.toggle").
		Description("Toggle the completed mark of a loaded task").
		Handler(t.toggle)

	srv.Tool("tasks.delete").
		Description("Delete a task").
		Handler(t.delete)

	srv.Tool("tasks.move").
		Description("Move the task at view index from (0-based) to index to").
		Handler(t.move)

	srv.Tool("tasks.reorder").
		Description("Reorder the loaded view; ids must list every loaded task exactly once").
		Handler(t.reorder)

	return nil
}

func (t *taskTools) sync() (*synchronizer.Synchronizer, error) {
	if err := t.app.Ready(); err != nil {
		return nil, err
	}
	return t.app.Synchronizer, nil
}

func (t *taskTools) list(ctx context.Context, _ emptyInput) (viewResult, error) {
	s, err := t.sync()
	if err != nil {
		return viewResult{}, err
	}
	if s.Len() == 0 && !s.IsLast() {
		if _, err := s.LoadNextPage(ctx); err != nil {
			return viewResult{}, err
		}
	}
	return newViewResult(s.Snapshot()), nil
}

func (t *taskTools) nextPage(ctx context.Context, _ emptyInput) (pageResult, error) {
	s, err := t.sync()
	if err != nil {
		return pageResult{}, err
	}
	out, err := s.LoadNextPage(ctx)
	if err != nil {
		return pageResult{}, err
	}
	return pageResult{
		Appended:   out.Appended,
		Filtered:   out.Filtered,
		Skipped:    out.Skipped,
		Reconciled: out.Reconciled,
		View:       newViewResult(s.Snapshot()),
	}, nil
}

func (t *taskTools) add(ctx context.Context, in taskAddInput) (task.Task, error) {
	s, err := t.sync()
	if err != nil {
		return task.Task{}, err
	}
	dialog := synchronizer.NewEditDialog(s)
	dialog.OpenAdd()
	return dialog.Confirm(ctx, in.Title, in.Subtitle)
}

func (t *taskTools) update(ctx context.Context, in taskUpdateInput) (task.Task, error) {
	s, err := t.sync()
	if err != nil {
		return task.Task{}, err
	}
	current, err := loadedTask(s, in.ID)
	if err != nil {
		return task.Task{}, err
	}

	title, subtitle := current.Title, current.Subtitle
	if in.Title != "" {
		title = in.Title
	}
	if in.Subtitle != "" {
		subtitle = in.Subtitle
	}

	dialog := synchronizer.NewEditDialog(s)
	dialog.OpenEdit(current)
	return dialog.Confirm(ctx, title, subtitle)
}

func (t *taskTools) toggle(ctx context.Context, in taskIDInput) (task.Task, error) {
	s, err := t.sync()
	if err != nil {
		return task.Task{}, err
	}
	id, err := toTaskID(in.ID)
	if err != nil {
		return task.Task{}, err
	}
	return s.ToggleCompleted(ctx, id)
}

func (t *taskTools) delete(ctx context.Context, in taskIDInput) (deleteResult, error) {
	s, err := t.sync()
	if err != nil {
		return deleteResult{}, err
	}
	id, err := toTaskID(in.ID)
	if err != nil {
		return deleteResult{}, err
	}

	current, ok := s.Get(id)
	if !ok {
		current = task.Task{ID: id}
	}
	dialog := synchronizer.NewEditDialog(s)
	dialog.OpenEdit(current)
	if err := dialog.Delete(ctx); err != nil {
		return deleteResult{}, err
	}
	return deleteResult{ID: id, Deleted: true}, nil
}

func (t *taskTools) move(ctx context.Context, in taskMoveInput) (viewResult, error) {
	s, err := t.sync()
	if err != nil {
		return viewResult{}, err
	}
	if err := s.MoveWithinView(ctx, in.From, in.To); err != nil {
		return newViewResult(s.Snapshot()), err
	}
	return newViewResult(s.Snapshot()), nil
}

func (t *taskTools) reorder(ctx context.Context, in taskReorderInput) (viewResult, error) {
	s, err := t.sync()
	if err != nil {
		return viewResult{}, err
	}

	seq := make([]task.Task, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := toTaskID(raw)
		if err != nil {
			return viewResult{}, err
		}
		seq = append(seq, task.Task{ID: id})
	}

	if err := s.Reorder(ctx, seq); err != nil {
		return newViewResult(s.Snapshot()), err
	}
	return newViewResult(s.Snapshot()), nil
}

func loadedTask(s *synchronizer.Synchronizer, raw int64) (task.Task, error) {
	id, err := toTaskID(raw)
	if err != nil {
		return task.Task{}, err
	}
	current, ok := s.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: task %s is not loaded; call tasks.next_page first", task.ErrNotFound, id)
	}
	return current, nil
}
