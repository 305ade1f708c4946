package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ordo/adapter/cli"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/synchronizer"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Add, list, edit, complete, reorder and delete tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(doneCmd)
	Cmd.AddCommand(rmCmd)
	Cmd.AddCommand(moveCmd)
	Cmd.AddCommand(dragCmd)
}

func readyApp() (*cli.App, error) {
	app := cli.GetApp()
	if err := app.Ready(); err != nil {
		return nil, err
	}
	return app, nil
}

// loadPages loads up to n pages, stopping early at the end of the list.
// n <= 0 loads everything.
func loadPages(ctx context.Context, s *synchronizer.Synchronizer, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if s.IsLast() {
			return nil
		}
		if _, err := s.LoadNextPage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// loadUntil loads pages until cond holds or the list ends.
func loadUntil(ctx context.Context, s *synchronizer.Synchronizer, cond func() bool) error {
	for !cond() && !s.IsLast() {
		if _, err := s.LoadNextPage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// findTask loads pages until the task with id is in view.
func findTask(ctx context.Context, s *synchronizer.Synchronizer, id task.ID) (task.Task, error) {
	if err := loadUntil(ctx, s, func() bool { return s.IndexOf(id) >= 0 }); err != nil {
		return task.Task{}, err
	}
	t, ok := s.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: task %s", task.ErrNotFound, id)
	}
	return t, nil
}

func parseID(arg string) (task.ID, error) {
	id, err := task.ParseID(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", arg, err)
	}
	return id, nil
}

func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: list index must be a positive number, got %q", task.ErrInvalidArgument, arg)
	}
	return n - 1, nil
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printTask(w io.Writer, t task.Task) error {
	if cli.JSONOutput() {
		return json.NewEncoder(w).Encode(t)
	}
	_, err := fmt.Fprintf(w, "%s %s (%s)  id=%s position=%d\n", checkbox(t.Completed), t.Title, t.Subtitle, t.ID, t.Position)
	return err
}

func printSnapshot(w io.Writer, snap synchronizer.Snapshot) error {
	if cli.JSONOutput() {
		return json.NewEncoder(w).Encode(snap)
	}
	if len(snap.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}
	for i, t := range snap.Tasks {
		if _, err := fmt.Fprintf(w, "%3d. %s %s (%s)  id=%s\n", i+1, checkbox(t.Completed), t.Title, t.Subtitle, t.ID); err != nil {
			return err
		}
	}
	if !snap.IsLast {
		_, err := fmt.Fprintf(w, "Showing %d tasks; more may follow (use --pages or --all).\n", len(snap.Tasks))
		return err
	}
	return nil
}
