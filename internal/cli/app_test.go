package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-assistant/internal/api"
	"task-assistant/internal/chat"
)

func setupTestAppWithMockBusinessAPI(t *testing.T) (*App, *mockBusinessAPI, *bytes.Buffer) {
	t.Helper()
	mock := newMockBusinessAPI()
	out := &bytes.Buffer{}
	return NewApp(mock).WithOutput(out), mock, out
}

func TestApp_Run_NoArgs(t *testing.T) {
	app, _, _ := setupTestAppWithMockBusinessAPI(t)

	err := app.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: ta")
}

func TestChatCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		reply     chat.Reply
		wantOut   string
		wantErr   string
		wantCalls []string
	}{
		{
			name:      "joins arguments into one message",
			args:      []string{"add", "buy", "milk"},
			reply:     chat.Reply{Response: "Task 'buy milk' created successfully", Success: true},
			wantOut:   "Task 'buy milk' created successfully\n",
			wantCalls: []string{"add buy milk"},
		},
		{
			name:      "operation failure is still a reply",
			args:      []string{"delete groceries"},
			reply:     chat.Reply{Response: "Error: Task not found", Success: true},
			wantOut:   "Error: Task not found\n",
			wantCalls: []string{"delete groceries"},
		},
		{
			name:      "pipeline failure becomes an error",
			args:      []string{"hello"},
			reply:     chat.Reply{Response: "I encountered an error: the language service is unavailable, please try again"},
			wantErr:   "I encountered an error: the language service is unavailable, please try again",
			wantCalls: []string{"hello"},
		},
		{
			name:    "blank message",
			args:    []string{"  "},
			wantErr: "message is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, mock, out := setupTestAppWithMockBusinessAPI(t)
			mock.reply = tt.reply

			err := app.Run(context.Background(), append([]string{"chat"}, tt.args...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.Empty(t, out.String())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOut, out.String())
			}
			assert.Equal(t, tt.wantCalls, mock.messages)
		})
	}
}

func TestListCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		app, mock, out := setupTestAppWithMockBusinessAPI(t)

		require.NoError(t, app.Run(ctx, []string{"list"}))
		assert.Equal(t, chat.NoTasksText+"\n", out.String())
		assert.Equal(t, []string{""}, mock.statuses)
	})

	t.Run("newest first", func(t *testing.T) {
		app, mock, out := setupTestAppWithMockBusinessAPI(t)
		_, _ = mock.CreateTask(ctx, api.TaskCreate{Title: "buy milk", Priority: "high"})
		_, _ = mock.CreateTask(ctx, api.TaskCreate{Title: "walk dog"})

		require.NoError(t, app.Run(ctx, []string{"list"}))
		expected := "Here are your tasks:\n\n" +
			"• walk dog (medium priority, pending)\n\n" +
			"• buy milk (high priority, pending)\n"
		assert.Equal(t, expected, out.String())
	})

	t.Run("status argument", func(t *testing.T) {
		app, mock, _ := setupTestAppWithMockBusinessAPI(t)

		require.NoError(t, app.Run(ctx, []string{"list", " completed "}))
		assert.Equal(t, []string{"completed"}, mock.statuses)
	})

	t.Run("failure message passes through", func(t *testing.T) {
		app, mock, out := setupTestAppWithMockBusinessAPI(t)
		mock.listErr = &api.OperationError{Message: "Error listing tasks: invalid status"}

		err := app.Run(ctx, []string{"list", "bogus"})
		require.Error(t, err)
		assert.Equal(t, "Error listing tasks: invalid status", err.Error())
		assert.Empty(t, out.String())
	})
}

func TestApp_WithOutputReachesRegisteredCommands(t *testing.T) {
	mock := newMockBusinessAPI()
	app := NewApp(mock)

	first, second := &bytes.Buffer{}, &bytes.Buffer{}
	app.WithOutput(first)
	require.NoError(t, app.Run(context.Background(), []string{"chat", "hello"}))

	app.WithOutput(second)
	require.NoError(t, app.Run(context.Background(), []string{"list"}))

	assert.Equal(t, "ok\n", first.String())
	assert.Equal(t, chat.NoTasksText+"\n", second.String())
}
