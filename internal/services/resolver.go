package services

import (
	"context"

	"task-assistant/internal/domain"
	"task-assistant/internal/errors"
	"task-assistant/internal/repository/sqlstore"
)

const msgTargetRequired = "identifier or title hint required"

type taskResolverImpl struct {
	mapper *domain.TaskMapper
}

// NewTaskResolver creates a resolver. When several titles contain the hint
// the lowest id wins; there is no ranking by relevance.
func NewTaskResolver() TaskResolver {
	return &taskResolverImpl{mapper: domain.NewTaskMapper()}
}

// Resolve looks up by ID when one is given, otherwise by title hint.
func (r *taskResolverImpl) Resolve(ctx context.Context, store sqlstore.TaskStore, target Target) (*domain.Task, error) {
	var (
		row *sqlstore.Task
		err error
	)
	switch {
	case target.ID != nil && *target.ID > 0:
		row, err = store.GetTask(ctx, *target.ID)
	case target.TitleHint != "":
		row, err = store.FindTaskByTitle(ctx, target.TitleHint)
	default:
		return nil, errors.NewValidationError(msgTargetRequired, nil)
	}
	if err != nil {
		return nil, err
	}

	task := r.mapper.FromDatabase(*row)
	return &task, nil
}
