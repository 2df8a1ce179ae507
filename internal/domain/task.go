package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the title limit in characters.
const MaxTitleLength = 255

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st.IsValid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q (want one of %s)", s, joinNames(Statuses))
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q (want one of %s)", s, joinNames(Priorities))
}

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// Rank orders priorities: low=1 through urgent=4, zero when invalid.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

func (p Priority) String() string { return string(p) }

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// Task is the domain view of a stored task.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask returns an unsaved task with default status and priority.
func NewTask(title string) Task {
	return Task{
		Title:    title,
		Status:   StatusPending,
		Priority: PriorityMedium,
	}
}

// IsValid reports whether the task satisfies the stored-task invariants.
func (t Task) IsValid() bool {
	n := utf8.RuneCountInString(t.Title)
	return n > 0 && n <= MaxTitleLength && t.Status.IsValid() && t.Priority.IsValid()
}

// String returns the title for display purposes.
func (t Task) String() string {
	return t.Title
}
