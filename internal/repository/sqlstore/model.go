package sqlstore

import "time"

// Task is the persisted row of the tasks table. Status and priority are
// stored as their lowercase names; enum checks live in the schema and in
// the domain layer.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order selects the ORDER BY clause of a listing.
type Order int

const (
	// OrderCreatedDesc lists newest first.
	OrderCreatedDesc Order = iota
	// OrderPriorityDue lists by priority rank descending, then due date
	// ascending with undated tasks last.
	OrderPriorityDue
	// OrderInsertion lists by id ascending.
	OrderInsertion
)

// ListOptions narrows a task listing. Nil fields are not filtered on.
type ListOptions struct {
	Status    *string
	Priority  *string
	DueFrom   *time.Time // inclusive
	DueBefore *time.Time // exclusive
	Order     Order
	Limit     int
	Offset    int
}
