package api

import (
	"context"
	"time"

	"task-assistant/internal/chat"
	"task-assistant/internal/domain"
	"task-assistant/internal/errors"
	"task-assistant/internal/services"
	"task-assistant/internal/validation"
)

// TaskCreate is the payload of a direct create.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
}

// TaskUpdate is a partial update; absent fields are left alone.
type TaskUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// ChatRequest is the conversational entry point payload.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is what callers of the conversational entry point see.
type ChatResponse struct {
	Response     string    `json:"response"`
	TasksUpdated bool      `json:"tasks_updated"`
	Timestamp    time.Time `json:"timestamp"`
}

// OperationError carries the user-facing message of a failed operation
// together with its cause.
type OperationError struct {
	Message string
	Cause   error
}

func (e *OperationError) Error() string { return e.Message }
func (e *OperationError) Unwrap() error { return e.Cause }

// Kind classifies a failure for transport status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindUnauthorized
)

// KindOf reports how err should be surfaced to a remote caller.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.IsErrorType(err, errors.ErrorTypeNotFound):
		return KindNotFound
	case errors.IsErrorType(err, errors.ErrorTypePermission):
		return KindUnauthorized
	case validation.IsValidationError(err),
		errors.IsErrorType(err, errors.ErrorTypeValidation),
		errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		return KindInvalid
	}
	return KindInternal
}

// BusinessAPI is the surface shared by the HTTP server and the CLI.
type BusinessAPI interface {
	// ========== Conversation ==========

	// Chat runs one message through the assistant.
	Chat(ctx context.Context, message string) chat.Reply

	// ========== Task CRUD ==========

	CreateTask(ctx context.Context, in TaskCreate) (*domain.TaskSnapshot, error)
	GetTask(ctx context.Context, id int64) (*domain.TaskSnapshot, error)
	UpdateTask(ctx context.Context, id int64, in TaskUpdate) (*domain.TaskSnapshot, error)
	DeleteTask(ctx context.Context, id int64) error

	// ========== Queries ==========

	// PageTasks lists tasks in insertion order.
	PageTasks(ctx context.Context, skip, limit int) ([]domain.TaskSnapshot, error)
	// RecentTasks lists tasks newest first, optionally by status.
	RecentTasks(ctx context.Context, status string) ([]domain.TaskSnapshot, error)
	TasksByPriority(ctx context.Context, priority string) ([]domain.TaskSnapshot, error)
	TasksByStatus(ctx context.Context, status string) ([]domain.TaskSnapshot, error)
}

type businessAPIImpl struct {
	tasks        services.TaskService
	orchestrator *chat.Orchestrator
	ids          *validation.TaskValidator
}

// NewBusinessAPI creates the facade over the task service and the chat
// orchestrator.
func NewBusinessAPI(tasks services.TaskService, orchestrator *chat.Orchestrator) BusinessAPI {
	return &businessAPIImpl{tasks: tasks, orchestrator: orchestrator, ids: validation.NewTaskValidator()}
}

func (b *businessAPIImpl) Chat(ctx context.Context, message string) chat.Reply {
	return b.orchestrator.Process(ctx, message)
}

func (b *businessAPIImpl) CreateTask(ctx context.Context, in TaskCreate) (*domain.TaskSnapshot, error) {
	res := b.tasks.Create(ctx, services.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
	})
	return single(res)
}

func (b *businessAPIImpl) GetTask(ctx context.Context, id int64) (*domain.TaskSnapshot, error) {
	return single(b.tasks.Get(ctx, id))
}

func (b *businessAPIImpl) UpdateTask(ctx context.Context, id int64, in TaskUpdate) (*domain.TaskSnapshot, error) {
	if err := b.checkID("updating", id); err != nil {
		return nil, err
	}
	res := b.tasks.Update(ctx, services.ByID(id), services.Updates{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	return single(res)
}

func (b *businessAPIImpl) DeleteTask(ctx context.Context, id int64) error {
	if err := b.checkID("deleting", id); err != nil {
		return err
	}
	res := b.tasks.Delete(ctx, services.ByID(id))
	if !res.Success {
		return toError(res)
	}
	return nil
}

// checkID rejects a path id before it reaches the resolver, where an id of
// zero would read as "no id given".
func (b *businessAPIImpl) checkID(action string, id int64) error {
	if err := b.ids.ValidateTaskID(id); err != nil {
		return &OperationError{Message: "Error " + action + " task: " + err.Error(), Cause: err}
	}
	return nil
}

func (b *businessAPIImpl) PageTasks(ctx context.Context, skip, limit int) ([]domain.TaskSnapshot, error) {
	return many(b.tasks.Page(ctx, skip, limit))
}

func (b *businessAPIImpl) RecentTasks(ctx context.Context, status string) ([]domain.TaskSnapshot, error) {
	return many(b.tasks.List(ctx, status))
}

func (b *businessAPIImpl) TasksByPriority(ctx context.Context, priority string) ([]domain.TaskSnapshot, error) {
	return many(b.tasks.Filter(ctx, services.FilterInput{Priority: priority}))
}

func (b *businessAPIImpl) TasksByStatus(ctx context.Context, status string) ([]domain.TaskSnapshot, error) {
	return many(b.tasks.Filter(ctx, services.FilterInput{Status: status}))
}

func single(res domain.Result) (*domain.TaskSnapshot, error) {
	if !res.Success {
		return nil, toError(res)
	}
	return res.Task, nil
}

func many(res domain.Result) ([]domain.TaskSnapshot, error) {
	if !res.Success {
		return nil, toError(res)
	}
	if res.Tasks == nil {
		return []domain.TaskSnapshot{}, nil
	}
	return res.Tasks, nil
}

func toError(res domain.Result) error {
	return &OperationError{Message: res.Message, Cause: res.Err}
}
