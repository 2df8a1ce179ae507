package validation

import (
	"strings"

	"task-assistant/internal/domain"
)

// Due filter values accepted by the task filter.
const (
	DueToday   = "today"
	DueOverdue = "overdue"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

func NewTaskValidator() *TaskValidator {
	return &TaskValidator{validator: NewValidator()}
}

func NewTaskValidatorWith(v *Validator) *TaskValidator {
	return &TaskValidator{validator: v}
}

// ValidateTitle checks the title invariants and returns the trimmed title.
func (tv *TaskValidator) ValidateTitle(title string) (string, error) {
	ve := NewValidationError()
	trimmed := strings.TrimSpace(title)
	tv.checkTitle(ve, trimmed)
	if err := ve.OrNil(); err != nil {
		return "", err
	}
	return trimmed, nil
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	if !tv.validator.IsNonEmptyString(title) {
		ve.AddRequiredError("title")
		return
	}
	max := tv.validator.TitleMaxLength()
	if !tv.validator.IsValidStringLength(title, 1, max) {
		ve.AddInvalidLengthError("title", title, 1, max)
	}
}

// ParseStatus validates and converts a status name.
func (tv *TaskValidator) ParseStatus(s string) (domain.Status, error) {
	st, err := domain.ParseStatus(s)
	if err != nil {
		ve := NewValidationError()
		ve.AddInvalidValueError("status", s, "must be one of pending, in_progress, completed, cancelled")
		return "", ve
	}
	return st, nil
}

// ParsePriority validates and converts a priority name.
func (tv *TaskValidator) ParsePriority(p string) (domain.Priority, error) {
	pr, err := domain.ParsePriority(p)
	if err != nil {
		ve := NewValidationError()
		ve.AddInvalidValueError("priority", p, "must be one of low, medium, high, urgent")
		return "", ve
	}
	return pr, nil
}

// ValidateDueFilter accepts "today" and "overdue" in any case.
func (tv *TaskValidator) ValidateDueFilter(due string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(due))
	switch normalized {
	case DueToday, DueOverdue:
		return normalized, nil
	}
	ve := NewValidationError()
	ve.AddInvalidValueError("due_date", due, "must be today or overdue")
	return "", ve
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidTaskID(id) {
		ve := NewValidationError()
		ve.AddInvalidValueError("task_id", id, "must be a positive integer")
		return ve
	}
	return nil
}

// ValidateTask checks a full domain task before it is written.
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	ve := NewValidationError()
	tv.checkTitle(ve, task.Title)
	if !tv.validator.IsValidStatus(string(task.Status)) {
		ve.AddInvalidValueError("status", task.Status, "must be one of pending, in_progress, completed, cancelled")
	}
	if !tv.validator.IsValidPriority(string(task.Priority)) {
		ve.AddInvalidValueError("priority", task.Priority, "must be one of low, medium, high, urgent")
	}
	if task.ID != 0 && !tv.validator.IsValidTaskID(task.ID) {
		ve.AddInvalidValueError("task_id", task.ID, "must be a positive integer")
	}
	return ve.OrNil()
}
