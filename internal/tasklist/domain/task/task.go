// Package task defines the task record and the store contract that keeps
// tasks in a user-controlled order.
package task

import (
	"strconv"
	"strings"
	"time"
)

// ID identifies a task. IDs are assigned by the store and never reused.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses the decimal form produced by String.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return ID(n), nil
}

// Task is a single entry in the ordered list.
type Task struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Completed bool      `json:"completed"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an unsaved task with trimmed, validated content.
func New(title, subtitle string) (Task, error) {
	t := Task{Title: strings.TrimSpace(title), Subtitle: strings.TrimSpace(subtitle)}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks the user-editable fields.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.Subtitle) == "" {
		return ErrEmptySubtitle
	}
	return nil
}

// WithContent returns a copy with new title and subtitle, trimmed.
func (t Task) WithContent(title, subtitle string) Task {
	t.Title = strings.TrimSpace(title)
	t.Subtitle = strings.TrimSpace(subtitle)
	return t
}

// Toggled returns a copy with the completion flag flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// IDs returns the ids of tasks in order.
func IDs(tasks []Task) []ID {
	ids := make([]ID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
