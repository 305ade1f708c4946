package task

import (
	"github.com/felixgeelhaar/ordo/internal/shared/domain"
)

const (
	AggregateType = "Task"
	// ListAggregateID names the list as a whole in reorder events.
	ListAggregateID = "tasklist"

	RoutingKeyCreated   = "tasklist.task.created"
	RoutingKeyUpdated   = "tasklist.task.updated"
	RoutingKeyDeleted   = "tasklist.task.deleted"
	RoutingKeyReordered = "tasklist.tasks.reordered"
)

// CreatedEvent is emitted after a task is inserted.
type CreatedEvent struct {
	domain.BaseEvent
	TaskID   ID     `json:"task_id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Position int64  `json:"position"`
}

func NewCreatedEvent(t Task) *CreatedEvent {
	return &CreatedEvent{
		BaseEvent: domain.NewBaseEvent(t.ID.String(), AggregateType, RoutingKeyCreated),
		TaskID:    t.ID,
		Title:     t.Title,
		Subtitle:  t.Subtitle,
		Position:  t.Position,
	}
}

// UpdatedEvent is emitted after a task's content changes.
type UpdatedEvent struct {
	domain.BaseEvent
	TaskID    ID     `json:"task_id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Completed bool   `json:"completed"`
}

func NewUpdatedEvent(t Task) *UpdatedEvent {
	return &UpdatedEvent{
		BaseEvent: domain.NewBaseEvent(t.ID.String(), AggregateType, RoutingKeyUpdated),
		TaskID:    t.ID,
		Title:     t.Title,
		Subtitle:  t.Subtitle,
		Completed: t.Completed,
	}
}

// DeletedEvent is emitted after a task is removed.
type DeletedEvent struct {
	domain.BaseEvent
	TaskID ID `json:"task_id"`
}

func NewDeletedEvent(id ID) *DeletedEvent {
	return &DeletedEvent{
		BaseEvent: domain.NewBaseEvent(id.String(), AggregateType, RoutingKeyDeleted),
		TaskID:    id,
	}
}

// PositionChange records one task moving to a new position.
type PositionChange struct {
	TaskID   ID    `json:"task_id"`
	Position int64 `json:"position"`
}

// ReorderedEvent is emitted after a batch of positions is persisted.
type ReorderedEvent struct {
	domain.BaseEvent
	Changes []PositionChange `json:"changes"`
}

func NewReorderedEvent(changes []PositionChange) *ReorderedEvent {
	return &ReorderedEvent{
		BaseEvent: domain.NewBaseEvent(ListAggregateID, AggregateType, RoutingKeyReordered),
		Changes:   changes,
	}
}
