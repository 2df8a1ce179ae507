package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-assistant/internal/chat"
	"task-assistant/internal/classifier"
	"task-assistant/internal/errors"
	"task-assistant/internal/repository/sqlstore"
	"task-assistant/internal/services"
	"task-assistant/internal/validation"
)

func setupTestBusinessAPI(t *testing.T) BusinessAPI {
	t.Helper()
	repo, err := sqlstore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tasks := services.NewTaskService(repo, services.NewTaskResolver())
	return NewBusinessAPI(tasks, chat.New(tasks, classifier.Echo{}))
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetTask(t *testing.T) {
	api := setupTestBusinessAPI(t)
	ctx := context.Background()
	due := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	created, err := api.CreateTask(ctx, TaskCreate{Title: "write report", Priority: "high", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := api.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "2025-07-01T12:00:00Z", *got.DueDate)
}

func TestGetTask(t *testing.T) {
	tests := []struct {
		name           string
		taskID         int64
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name:   "should return not found error when task does not exist",
			taskID: 999,
			errorAssertion: func(t *testing.T, err error) {
				assert.Equal(t, KindNotFound, KindOf(err))
				assert.Equal(t, "Task not found", err.Error())
			},
		},
		{
			name:   "should return validation error when invalid task ID is provided",
			taskID: 0,
			errorAssertion: func(t *testing.T, err error) {
				assert.Equal(t, KindInvalid, KindOf(err))
				assert.Contains(t, err.Error(), "task_id")
			},
		},
		{
			name:   "should return validation error when negative task ID is provided",
			taskID: -1,
			errorAssertion: func(t *testing.T, err error) {
				assert.Equal(t, KindInvalid, KindOf(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := setupTestBusinessAPI(t)

			task, err := api.GetTask(context.Background(), tt.taskID)

			require.Error(t, err)
			assert.Nil(t, task)
			tt.errorAssertion(t, err)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	api := setupTestBusinessAPI(t)
	ctx := context.Background()
	created, err := api.CreateTask(ctx, TaskCreate{Title: "write report"})
	require.NoError(t, err)

	updated, err := api.UpdateTask(ctx, created.ID, TaskUpdate{Status: strPtr("in_progress")})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, "write report", updated.Title)

	_, err = api.UpdateTask(ctx, created.ID, TaskUpdate{Priority: strPtr("extreme")})
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.Contains(t, err.Error(), "Error updating task: ")

	_, err = api.UpdateTask(ctx, 404, TaskUpdate{Status: strPtr("completed")})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteTask(t *testing.T) {
	api := setupTestBusinessAPI(t)
	ctx := context.Background()
	created, err := api.CreateTask(ctx, TaskCreate{Title: "write report"})
	require.NoError(t, err)

	require.NoError(t, api.DeleteTask(ctx, created.ID))

	err = api.DeleteTask(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestMutationsRejectNonPositiveID(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		mutate   func(api BusinessAPI, id int64) error
		expected string
	}{
		{
			name: "update zero id",
			id:   0,
			mutate: func(api BusinessAPI, id int64) error {
				_, err := api.UpdateTask(context.Background(), id, TaskUpdate{Status: strPtr("completed")})
				return err
			},
			expected: `Error updating task: invalid task_id "0": must be a positive integer`,
		},
		{
			name: "update negative id",
			id:   -3,
			mutate: func(api BusinessAPI, id int64) error {
				_, err := api.UpdateTask(context.Background(), id, TaskUpdate{})
				return err
			},
			expected: `Error updating task: invalid task_id "-3": must be a positive integer`,
		},
		{
			name: "delete zero id",
			id:   0,
			mutate: func(api BusinessAPI, id int64) error {
				return api.DeleteTask(context.Background(), id)
			},
			expected: `Error deleting task: invalid task_id "0": must be a positive integer`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := setupTestBusinessAPI(t)
			_, err := api.CreateTask(context.Background(), TaskCreate{Title: "write report"})
			require.NoError(t, err)

			err = tt.mutate(api, tt.id)
			require.Error(t, err)
			assert.Equal(t, KindInvalid, KindOf(err))
			assert.Equal(t, tt.expected, err.Error())
			assert.True(t, validation.IsValidationError(err))

			tasks, err := api.RecentTasks(context.Background(), "")
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, "pending", tasks[0].Status)
		})
	}
}

func TestQueries(t *testing.T) {
	api := setupTestBusinessAPI(t)
	ctx := context.Background()
	for _, in := range []TaskCreate{
		{Title: "a", Priority: "low"},
		{Title: "b", Priority: "urgent"},
		{Title: "c", Priority: "urgent"},
	} {
		_, err := api.CreateTask(ctx, in)
		require.NoError(t, err)
	}
	_, err := api.UpdateTask(ctx, 2, TaskUpdate{Status: strPtr("completed")})
	require.NoError(t, err)

	page, err := api.PageTasks(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].Title)

	recent, err := api.RecentTasks(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "c", recent[0].Title)

	urgent, err := api.TasksByPriority(ctx, "urgent")
	require.NoError(t, err)
	assert.Len(t, urgent, 2)

	completed, err := api.TasksByStatus(ctx, "completed")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "b", completed[0].Title)

	none, err := api.TasksByStatus(ctx, "cancelled")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = api.TasksByPriority(ctx, "extreme")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestChat(t *testing.T) {
	api := setupTestBusinessAPI(t)

	reply := api.Chat(context.Background(), "Create a task to water plants")

	assert.True(t, reply.Success)
	assert.True(t, reply.TasksUpdated)
	assert.Equal(t, "Task 'water plants' created successfully", reply.Response)
}

func TestKindOf(t *testing.T) {
	ve := validation.NewValidationError()
	ve.AddRequiredError("title")

	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, KindInvalid, KindOf(ve))
	assert.Equal(t, KindInvalid, KindOf(errors.NewValidationError("x", nil)))
	assert.Equal(t, KindNotFound, KindOf(&OperationError{Message: "m", Cause: errors.NewNotFoundError("Task", "1")}))
	assert.Equal(t, KindUnauthorized, KindOf(errors.NewPermissionError("read", "tasks")))
	assert.Equal(t, KindInternal, KindOf(errors.NewDatabaseError("x", nil)))
}
