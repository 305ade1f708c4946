// Package pager reads the ordered task list in fixed-size pages.
package pager

import (
	"context"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

// DefaultPageSize is used when a non-positive size is requested.
const DefaultPageSize = 10

// Result is the outcome of one LoadNext call.
type Result struct {
	// Appended holds the page minus tasks the caller already had.
	Appended []task.Task
	// IsLast is set once the store returned an empty page.
	IsLast bool
	// Filtered counts tasks dropped as already held. A non-zero value means
	// the order shifted between page requests.
	Filtered int
}

// Pager tracks the load cursor. It is not safe for concurrent use; the
// owner serializes calls.
type Pager struct {
	store     task.Store
	pageSize  int
	pageCount int
	isLast    bool
}

// New creates a pager positioned at the start of the list.
func New(store task.Store, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{store: store, pageSize: pageSize}
}

// LoadNext reads the page at the cursor. have reports ids the caller already
// holds; it may be nil. An empty page marks the end of the list without
// moving the cursor. On error the cursor is left as it was.
func (p *Pager) LoadNext(ctx context.Context, have func(task.ID) bool) (Result, error) {
	if p.isLast {
		return Result{IsLast: true}, nil
	}

	page, err := p.store.Page(ctx, p.pageSize, p.Offset())
	if err != nil {
		return Result{}, err
	}
	if len(page) == 0 {
		p.isLast = true
		return Result{IsLast: true}, nil
	}

	appended := make([]task.Task, 0, len(page))
	for _, t := range page {
		if have != nil && have(t.ID) {
			continue
		}
		appended = append(appended, t)
	}
	p.pageCount++

	return Result{Appended: appended, Filtered: len(page) - len(appended)}, nil
}

// Reset moves the cursor back to the first page.
func (p *Pager) Reset() {
	p.pageCount = 0
	p.isLast = false
}

// PageSize returns the configured page size.
func (p *Pager) PageSize() int { return p.pageSize }

// Offset is the store offset of the next page.
func (p *Pager) Offset() int { return p.pageCount * p.pageSize }

// IsLast reports whether the end of the list has been reached.
func (p *Pager) IsLast() bool { return p.isLast }
