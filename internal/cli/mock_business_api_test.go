package cli

import (
	"context"
	"sort"

	"task-assistant/internal/api"
	"task-assistant/internal/chat"
	"task-assistant/internal/domain"
	"task-assistant/internal/errors"
)

// mockBusinessAPI implements the BusinessAPI interface for testing
type mockBusinessAPI struct {
	tasks    map[int64]domain.TaskSnapshot
	nextID   int64
	reply    chat.Reply
	messages []string
	statuses []string
	listErr  error
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{
		tasks:  make(map[int64]domain.TaskSnapshot),
		nextID: 1,
		reply:  chat.Reply{Response: "ok", Success: true},
	}
}

func (m *mockBusinessAPI) Chat(ctx context.Context, message string) chat.Reply {
	m.messages = append(m.messages, message)
	return m.reply
}

func (m *mockBusinessAPI) CreateTask(ctx context.Context, in api.TaskCreate) (*domain.TaskSnapshot, error) {
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	task := domain.TaskSnapshot{
		ID:          m.nextID,
		Title:       in.Title,
		Description: in.Description,
		Status:      "pending",
		Priority:    priority,
	}
	m.tasks[task.ID] = task
	m.nextID++
	return &task, nil
}

func (m *mockBusinessAPI) GetTask(ctx context.Context, id int64) (*domain.TaskSnapshot, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, errors.NewNotFoundError("Task", "")
	}
	return &task, nil
}

func (m *mockBusinessAPI) UpdateTask(ctx context.Context, id int64, in api.TaskUpdate) (*domain.TaskSnapshot, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, errors.NewNotFoundError("Task", "")
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	m.tasks[id] = task
	return &task, nil
}

func (m *mockBusinessAPI) DeleteTask(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return errors.NewNotFoundError("Task", "")
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockBusinessAPI) PageTasks(ctx context.Context, skip, limit int) ([]domain.TaskSnapshot, error) {
	return m.sorted(false), nil
}

func (m *mockBusinessAPI) RecentTasks(ctx context.Context, status string) ([]domain.TaskSnapshot, error) {
	m.statuses = append(m.statuses, status)
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.TaskSnapshot{}
	for _, t := range m.sorted(true) {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockBusinessAPI) TasksByPriority(ctx context.Context, priority string) ([]domain.TaskSnapshot, error) {
	out := []domain.TaskSnapshot{}
	for _, t := range m.sorted(false) {
		if t.Priority == priority {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockBusinessAPI) TasksByStatus(ctx context.Context, status string) ([]domain.TaskSnapshot, error) {
	out := []domain.TaskSnapshot{}
	for _, t := range m.sorted(false) {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockBusinessAPI) sorted(newestFirst bool) []domain.TaskSnapshot {
	out := make([]domain.TaskSnapshot, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}
