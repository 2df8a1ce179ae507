package domain

import "time"

// TaskQuery is the domain form of a task listing request.
type TaskQuery struct {
	Status    *Status
	Priority  *Priority
	DueFrom   *time.Time
	DueBefore *time.Time
	// ByPriority orders by priority rank and due date instead of recency.
	ByPriority bool
	Limit      int
	Offset     int
}
