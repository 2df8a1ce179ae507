package services

import (
	"context"
	"time"

	"task-assistant/internal/domain"
	"task-assistant/internal/repository/sqlstore"
)

// Target identifies the task an update or delete applies to. ID wins over
// TitleHint when both are set.
type Target struct {
	ID        *int64
	TitleHint string
}

// ByID targets a task by identifier.
func ByID(id int64) Target {
	return Target{ID: &id}
}

// ByTitle targets the first task whose title contains hint.
func ByTitle(hint string) Target {
	return Target{TitleHint: hint}
}

// CreateInput carries the fields of a new task. An empty Priority means
// medium; any other value must name a priority.
type CreateInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    string
}

// Updates lists the fields to change. Nil fields are left alone.
type Updates struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// FilterInput holds the optional predicates of a filtered listing. Due is
// "today" or "overdue".
type FilterInput struct {
	Priority string
	Status   string
	Due      string
}

// TaskResolver finds exactly one task for a Target.
type TaskResolver interface {
	Resolve(ctx context.Context, store sqlstore.TaskStore, target Target) (*domain.Task, error)
}

// TaskService executes task operations. Failures are reported through the
// returned Result, never as Go errors.
type TaskService interface {
	Create(ctx context.Context, in CreateInput) domain.Result
	Get(ctx context.Context, id int64) domain.Result
	Update(ctx context.Context, target Target, updates Updates) domain.Result
	Delete(ctx context.Context, target Target) domain.Result
	// List returns tasks newest first, optionally restricted to one status.
	List(ctx context.Context, status string) domain.Result
	// Filter orders by priority then due date, undated tasks last.
	Filter(ctx context.Context, in FilterInput) domain.Result
	// Page lists tasks in insertion order.
	Page(ctx context.Context, skip, limit int) domain.Result
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	Resolver TaskResolver
	Tasks    TaskService
}

// NewServiceContainer wires the services over one repository.
func NewServiceContainer(repo sqlstore.Repository, opts ...Option) *ServiceContainer {
	resolver := NewTaskResolver()
	return &ServiceContainer{
		Resolver: resolver,
		Tasks:    NewTaskService(repo, resolver, opts...),
	}
}
