package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"task-assistant/internal/domain"
	"task-assistant/internal/errors"
	"task-assistant/internal/logging"
	"task-assistant/internal/repository/sqlstore"
	"task-assistant/internal/validation"
)

// Failure prefixes for each operation.
const (
	prefixCreate = "Error creating task: "
	prefixGet    = "Error retrieving task: "
	prefixUpdate = "Error updating task: "
	prefixDelete = "Error deleting task: "
	prefixList   = "Error listing tasks: "
	prefixFilter = "Error filtering tasks: "
)

// DefaultPageLimit applies when Page is called with limit 0.
const DefaultPageLimit = 100

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo          sqlstore.Repository
	resolver      TaskResolver
	mapper        *domain.Mapper
	taskValidator *validation.TaskValidator
	logger        *slog.Logger
	now           func() time.Time
	queryTimeout  time.Duration
	writeTimeout  time.Duration
}

// Option configures a TaskService.
type Option func(*taskServiceImpl)

// WithClock replaces time.Now for due-date filters.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) { s.now = now }
}

// WithTimeouts bounds read and write operations. Zero disables a bound.
func WithTimeouts(query, write time.Duration) Option {
	return func(s *taskServiceImpl) {
		s.queryTimeout = query
		s.writeTimeout = write
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *taskServiceImpl) { s.logger = logger }
}

// WithValidator swaps the validator, e.g. for a configured title limit.
func WithValidator(v *validation.TaskValidator) Option {
	return func(s *taskServiceImpl) { s.taskValidator = v }
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo sqlstore.Repository, resolver TaskResolver, opts ...Option) TaskService {
	s := &taskServiceImpl{
		repo:          repo,
		resolver:      resolver,
		mapper:        domain.NewMapper(),
		taskValidator: validation.NewTaskValidator(),
		logger:        logging.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fail turns err into a failed result and logs it when it is not a caller
// mistake.
func (s *taskServiceImpl) fail(ctx context.Context, op, prefix string, err error) domain.Result {
	if errors.ShouldLogError(err) && !validation.IsValidationError(err) {
		attrs := []any{"operation", op, "error", err}
		if appErr, ok := errors.AsAppError(err); ok {
			attrs = append(attrs, appErr.LogAttrs()...)
		}
		logging.FromContext(ctx, s.logger).ErrorContext(ctx, "task operation failed", attrs...)
	}
	return domain.FailedWith(prefix+errors.GetUserMessage(err), err)
}

// resolveFailure keeps resolver errors apart so they surface without a
// prefix.
type resolveFailure struct{ err error }

func (r *resolveFailure) Error() string { return r.err.Error() }
func (r *resolveFailure) Unwrap() error { return r.err }

func (s *taskServiceImpl) failMutation(ctx context.Context, op, prefix string, err error) domain.Result {
	if rf, ok := err.(*resolveFailure); ok {
		return s.fail(ctx, op, "", rf.err)
	}
	return s.fail(ctx, op, prefix, err)
}

func (s *taskServiceImpl) Create(ctx context.Context, in CreateInput) domain.Result {
	title, err := s.taskValidator.ValidateTitle(in.Title)
	if err != nil {
		return s.fail(ctx, "create", prefixCreate, err)
	}

	task := domain.NewTask(title)
	task.Description = in.Description
	task.DueDate = in.DueDate
	if strings.TrimSpace(in.Priority) != "" {
		priority, err := s.taskValidator.ParsePriority(in.Priority)
		if err != nil {
			return s.fail(ctx, "create", prefixCreate, err)
		}
		task.Priority = priority
	}

	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	row := s.mapper.Task.ToDatabase(task)
	err = s.repo.WithinTx(ctx, func(tx sqlstore.TaskStore) error {
		return tx.CreateTask(ctx, &row)
	})
	if err != nil {
		return s.fail(ctx, "create", prefixCreate, err)
	}

	created := s.mapper.Task.FromDatabase(row)
	return domain.Succeeded(fmt.Sprintf("Task '%s' created successfully", created.Title)).WithTask(created)
}

func (s *taskServiceImpl) Get(ctx context.Context, id int64) domain.Result {
	if err := s.taskValidator.ValidateTaskID(id); err != nil {
		return s.fail(ctx, "get", prefixGet, err)
	}

	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return s.fail(ctx, "get", "", err)
		}
		return s.fail(ctx, "get", prefixGet, err)
	}

	task := s.mapper.Task.FromDatabase(*row)
	return domain.Succeeded(fmt.Sprintf("Task '%s' retrieved successfully", task.Title)).WithTask(task)
}

// Update resolves and modifies the target in one transaction. An empty
// update still refreshes updated_at.
func (s *taskServiceImpl) Update(ctx context.Context, target Target, updates Updates) domain.Result {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	var updated domain.Task
	err := s.repo.WithinTx(ctx, func(tx sqlstore.TaskStore) error {
		task, err := s.resolver.Resolve(ctx, tx, target)
		if err != nil {
			return &resolveFailure{err: err}
		}
		if err := s.apply(task, updates); err != nil {
			return err
		}

		row := s.mapper.Task.ToDatabase(*task)
		if err := tx.UpdateTask(ctx, &row); err != nil {
			return err
		}
		updated = s.mapper.Task.FromDatabase(row)
		return nil
	})
	if err != nil {
		return s.failMutation(ctx, "update", prefixUpdate, err)
	}

	return domain.Succeeded(fmt.Sprintf("Task '%s' updated successfully", updated.Title)).WithTask(updated)
}

func (s *taskServiceImpl) apply(task *domain.Task, u Updates) error {
	if u.Title != nil {
		title, err := s.taskValidator.ValidateTitle(*u.Title)
		if err != nil {
			return err
		}
		task.Title = title
	}
	if u.Description != nil {
		desc := *u.Description
		task.Description = &desc
	}
	if u.Status != nil {
		status, err := s.taskValidator.ParseStatus(*u.Status)
		if err != nil {
			return err
		}
		task.Status = status
	}
	if u.Priority != nil {
		priority, err := s.taskValidator.ParsePriority(*u.Priority)
		if err != nil {
			return err
		}
		task.Priority = priority
	}
	if u.DueDate != nil {
		due := *u.DueDate
		task.DueDate = &due
	}
	return nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, target Target) domain.Result {
	ctx, cancel := withTimeout(ctx, s.writeTimeout)
	defer cancel()

	var title string
	err := s.repo.WithinTx(ctx, func(tx sqlstore.TaskStore) error {
		task, err := s.resolver.Resolve(ctx, tx, target)
		if err != nil {
			return &resolveFailure{err: err}
		}
		title = task.Title
		return tx.DeleteTask(ctx, task.ID)
	})
	if err != nil {
		return s.failMutation(ctx, "delete", prefixDelete, err)
	}

	return domain.Succeeded(fmt.Sprintf("Task '%s' deleted successfully", title))
}

func (s *taskServiceImpl) List(ctx context.Context, status string) domain.Result {
	var query domain.TaskQuery
	if strings.TrimSpace(status) != "" {
		st, err := s.taskValidator.ParseStatus(status)
		if err != nil {
			return s.fail(ctx, "list", prefixList, err)
		}
		query.Status = &st
	}

	tasks, err := s.query(ctx, query)
	if err != nil {
		return s.fail(ctx, "list", prefixList, err)
	}
	return domain.Succeeded(fmt.Sprintf("Found %d tasks", len(tasks))).WithTasks(tasks)
}

// Filter orders by priority rank descending, then due date ascending with
// undated tasks after dated ones, then id.
func (s *taskServiceImpl) Filter(ctx context.Context, in FilterInput) domain.Result {
	query := domain.TaskQuery{ByPriority: true}

	if strings.TrimSpace(in.Priority) != "" {
		p, err := s.taskValidator.ParsePriority(in.Priority)
		if err != nil {
			return s.fail(ctx, "filter", prefixFilter, err)
		}
		query.Priority = &p
	}
	if strings.TrimSpace(in.Status) != "" {
		st, err := s.taskValidator.ParseStatus(in.Status)
		if err != nil {
			return s.fail(ctx, "filter", prefixFilter, err)
		}
		query.Status = &st
	}
	if strings.TrimSpace(in.Due) != "" {
		due, err := s.taskValidator.ValidateDueFilter(in.Due)
		if err != nil {
			return s.fail(ctx, "filter", prefixFilter, err)
		}
		now := s.now()
		switch due {
		case validation.DueToday:
			y, m, d := now.Date()
			start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
			end := start.AddDate(0, 0, 1)
			query.DueFrom, query.DueBefore = &start, &end
		case validation.DueOverdue:
			query.DueBefore = &now
		}
	}

	tasks, err := s.query(ctx, query)
	if err != nil {
		return s.fail(ctx, "filter", prefixFilter, err)
	}
	return domain.Succeeded(fmt.Sprintf("Found %d tasks matching filters", len(tasks))).WithTasks(tasks)
}

// Page lists tasks by id for the CRUD surface.
func (s *taskServiceImpl) Page(ctx context.Context, skip, limit int) domain.Result {
	if skip < 0 || limit < 0 {
		ve := validation.NewValidationError()
		if skip < 0 {
			ve.AddInvalidValueError("skip", skip, "must not be negative")
		}
		if limit < 0 {
			ve.AddInvalidValueError("limit", limit, "must not be negative")
		}
		return s.fail(ctx, "page", prefixList, ve)
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}

	opts := sqlstore.ListOptions{Order: sqlstore.OrderInsertion, Limit: limit, Offset: skip}
	tasks, err := s.list(ctx, opts)
	if err != nil {
		return s.fail(ctx, "page", prefixList, err)
	}
	return domain.Succeeded(fmt.Sprintf("Found %d tasks", len(tasks))).WithTasks(tasks)
}

func (s *taskServiceImpl) query(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	return s.list(ctx, s.mapper.Query.ToDatabase(q))
}

func (s *taskServiceImpl) list(ctx context.Context, opts sqlstore.ListOptions) ([]domain.Task, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.ListTasks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.mapper.Task.FromDatabaseSlice(rows), nil
}
