// Package drag turns vertical pointer movement into single-step moves within
// the task view.
package drag

import (
	"context"
	"math"
	"sync"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

const (
	DefaultRowHeight    = 56.0
	DefaultSwapFraction = 1.0 / 3.0
)

// View is the part of the synchronizer a drag needs. StepWithinView resolves
// the task's index and moves it atomically.
type View interface {
	StepWithinView(ctx context.Context, id task.ID, step int) (bool, error)
}

// Threshold is the distance a row must travel before it swaps with its
// neighbour. Non-positive arguments fall back to the defaults.
func Threshold(rowHeight, fraction float64) float64 {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultSwapFraction
	}
	return rowHeight * fraction
}

// Session tracks one drag gesture at a time.
type Session struct {
	view      View
	threshold float64

	mu     sync.Mutex
	active bool
	id     task.ID
	offset float64
}

func NewSession(view View, threshold float64) *Session {
	if threshold <= 0 {
		threshold = Threshold(DefaultRowHeight, DefaultSwapFraction)
	}
	return &Session{view: view, threshold: threshold}
}

// Start begins dragging id. It reports false while another drag is active.
func (s *Session) Start(id task.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return false
	}
	s.active = true
	s.id = id
	s.offset = 0
	return true
}

// Drag adds deltaY to the gesture. Once the accumulated offset passes the
// threshold the task moves one row up (negative) or down (positive) and the
// offset starts over. It reports whether a move was made.
func (s *Session) Drag(ctx context.Context, deltaY float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false, nil
	}

	s.offset += deltaY
	if math.Abs(s.offset) <= s.threshold {
		return false, nil
	}

	step := 1
	if s.offset < 0 {
		step = -1
	}
	s.offset = 0

	return s.view.StepWithinView(ctx, s.id, step)
}

// End finishes the gesture. Moves already made stay.
func (s *Session) End() {
	s.reset()
}

// Cancel abandons the gesture. Moves already made are not undone.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.id = 0
	s.offset = 0
}

// ActiveID returns the dragged task, if any.
func (s *Session) ActiveID() (task.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.active
}

// Offset returns the distance accumulated since the last move.
func (s *Session) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Threshold returns the swap distance.
func (s *Session) Threshold() float64 {
	return s.threshold
}
