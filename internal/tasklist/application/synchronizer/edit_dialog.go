package synchronizer

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// DialogMode is what the edit dialog is doing.
type DialogMode int

const (
	DialogClosed DialogMode = iota
	DialogAdd
	DialogEdit
)

func (m DialogMode) String() string {
	switch m {
	case DialogAdd:
		return "add"
	case DialogEdit:
		return "edit"
	default:
		return "closed"
	}
}

// ErrDialogClosed is returned when a dialog action is taken with no dialog open.
var ErrDialogClosed = errors.New("edit dialog is not open")

// EditDialog drives add, edit and delete through a synchronizer. Every
// confirmed action closes the dialog, whether or not it succeeded.
type EditDialog struct {
	sync *Synchronizer

	mu      sync.Mutex
	mode    DialogMode
	editing task.Task
}

func NewEditDialog(s *Synchronizer) *EditDialog {
	return &EditDialog{sync: s}
}

// OpenAdd opens the dialog for a new task.
func (d *EditDialog) OpenAdd() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = DialogAdd
	d.editing = task.Task{}
}

// OpenEdit opens the dialog on an existing task.
func (d *EditDialog) OpenEdit(t task.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = DialogEdit
	d.editing = t
}

func (d *EditDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
}

func (d *EditDialog) Mode() DialogMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *EditDialog) IsOpen() bool {
	return d.Mode() != DialogClosed
}

// Editing returns the task under edit.
func (d *EditDialog) Editing() (task.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing, d.mode == DialogEdit
}

// Confirm saves title and subtitle: a new task in add mode, new content for
// the edited task in edit mode.
func (d *EditDialog) Confirm(ctx context.Context, title, subtitle string) (task.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.closeLocked()

	switch d.mode {
	case DialogAdd:
		return d.sync.AddTask(ctx, title, subtitle)
	case DialogEdit:
		return d.sync.EditContent(ctx, d.editing.ID, title, subtitle)
	default:
		return task.Task{}, ErrDialogClosed
	}
}

// Delete removes the edited task.
func (d *EditDialog) Delete(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.closeLocked()

	if d.mode != DialogEdit {
		return ErrDialogClosed
	}
	return d.sync.DeleteTask(ctx, d.editing.ID)
}

func (d *EditDialog) closeLocked() {
	d.mode = DialogClosed
	d.editing = task.Task{}
}
