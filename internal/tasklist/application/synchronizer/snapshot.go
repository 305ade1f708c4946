package synchronizer

import (
	"slices"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// Status is the page-loading state of the view.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	default:
		return "idle"
	}
}

// Snapshot is a copy of the view at one instant.
type Snapshot struct {
	Tasks  []task.Task `json:"tasks"`
	Status Status      `json:"-"`
	IsLast bool        `json:"is_last"`
}

// IndexOf returns the index of id, or -1.
func (s Snapshot) IndexOf(id task.ID) int {
	return slices.IndexFunc(s.Tasks, func(t task.Task) bool { return t.ID == id })
}

// PageOutcome reports what LoadNextPage did.
type PageOutcome struct {
	// Appended is the number of tasks added to the view.
	Appended int
	// Filtered is the number of already-held tasks the page repeated.
	Filtered int
	// IsLast is set once the end of the list has been seen.
	IsLast bool
	// Skipped is set when the call was ignored: another load was in
	// flight or the list was already exhausted.
	Skipped bool
	// Reconciled is set when drift forced a full reload of the view.
	Reconciled bool
}
