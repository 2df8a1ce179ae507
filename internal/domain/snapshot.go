package domain

import "time"

// TaskSnapshot is the read-only, serialisable projection of a task.
// Timestamps are RFC 3339 strings.
type TaskSnapshot struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Snapshot projects t.
func (t Task) Snapshot() TaskSnapshot {
	s := TaskSnapshot{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
	if t.DueDate != nil {
		due := formatTimestamp(*t.DueDate)
		s.DueDate = &due
	}
	return s
}

// Snapshots projects a slice of tasks, never returning nil.
func Snapshots(tasks []Task) []TaskSnapshot {
	out := make([]TaskSnapshot, len(tasks))
	for i, t := range tasks {
		out[i] = t.Snapshot()
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Result is the outcome of one task operation. Failures carry only a
// message; Task and Tasks are set by the operations that produce them.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Task    *TaskSnapshot  `json:"task,omitempty"`
	Tasks   []TaskSnapshot `json:"tasks,omitempty"`
	// Err is the cause of a failure, kept for status mapping and logs.
	Err error `json:"-"`
}

// Succeeded builds a successful result.
func Succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

// FailedWith builds a failed result that remembers its cause.
func FailedWith(message string, err error) Result {
	return Result{Success: false, Message: message, Err: err}
}

// WithTask attaches a single task snapshot.
func (r Result) WithTask(t Task) Result {
	s := t.Snapshot()
	r.Task = &s
	return r
}

// WithTasks attaches a list of snapshots.
func (r Result) WithTasks(tasks []Task) Result {
	r.Tasks = Snapshots(tasks)
	return r
}
