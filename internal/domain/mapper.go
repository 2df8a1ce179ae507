package domain

import (
	"task-assistant/internal/repository/sqlstore"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database row.
func (m *TaskMapper) ToDatabase(t Task) sqlstore.Task {
	return sqlstore.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromDatabase converts a database row to a domain Task. Rows are trusted
// to hold valid enum values because the schema checks them.
func (m *TaskMapper) FromDatabase(row sqlstore.Task) Task {
	return Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Status:      Status(row.Status),
		Priority:    Priority(row.Priority),
		DueDate:     row.DueDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// FromDatabaseSlice converts database rows to domain Tasks.
func (m *TaskMapper) FromDatabaseSlice(rows []*sqlstore.Task) []Task {
	tasks := make([]Task, len(rows))
	for i, row := range rows {
		tasks[i] = m.FromDatabase(*row)
	}
	return tasks
}

// QueryMapper converts a TaskQuery into store list options.
type QueryMapper struct{}

func NewQueryMapper() *QueryMapper {
	return &QueryMapper{}
}

func (m *QueryMapper) ToDatabase(q TaskQuery) sqlstore.ListOptions {
	opts := sqlstore.ListOptions{
		DueFrom:   q.DueFrom,
		DueBefore: q.DueBefore,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Status != nil {
		s := string(*q.Status)
		opts.Status = &s
	}
	if q.Priority != nil {
		p := string(*q.Priority)
		opts.Priority = &p
	}
	if q.ByPriority {
		opts.Order = sqlstore.OrderPriorityDue
	}
	return opts
}

// Mapper bundles the mappers used by the service layer.
type Mapper struct {
	Task  *TaskMapper
	Query *QueryMapper
}

func NewMapper() *Mapper {
	return &Mapper{
		Task:  NewTaskMapper(),
		Query: NewQueryMapper(),
	}
}
