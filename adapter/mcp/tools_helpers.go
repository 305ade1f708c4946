package mcp

import (
	"fmt"

	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
)

func toTaskID(raw int64) (task.ID, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: got %d", task.ErrInvalidID, raw)
	}
	return task.ID(raw), nil
}
