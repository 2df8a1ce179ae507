package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task := NewTask("buy milk")

	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.True(t, task.IsValid())
}

func TestTask_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		task  Task
		valid bool
	}{
		{"defaults", NewTask("x"), true},
		{"empty title", NewTask(""), false},
		{"255 multibyte runes", NewTask(strings.Repeat("é", 255)), true},
		{"256 runes", NewTask(strings.Repeat("a", 256)), false},
		{"bad status", Task{Title: "x", Status: "open", Priority: PriorityLow}, false},
		{"bad priority", Task{Title: "x", Status: StatusPending, Priority: "critical"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.task.IsValid())
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"IN_PROGRESS", StatusInProgress, false},
		{" completed ", StatusCompleted, false},
		{"cancelled", StatusCancelled, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pending, in_progress, completed, cancelled")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("Urgent")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, got)

	_, err = ParsePriority("critical")
	assert.Error(t, err)
}

func TestPriority_Rank(t *testing.T) {
	assert.Equal(t, 1, PriorityLow.Rank())
	assert.Equal(t, 2, PriorityMedium.Rank())
	assert.Equal(t, 3, PriorityHigh.Rank())
	assert.Equal(t, 4, PriorityUrgent.Rank())
	assert.Equal(t, 0, Priority("none").Rank())
}

func TestTask_Snapshot(t *testing.T) {
	desc := "Create a task to buy milk tomorrow"
	due := time.Date(2025, 3, 2, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	task := Task{
		ID:          3,
		Title:       "buy milk tomorrow",
		Description: &desc,
		Status:      StatusPending,
		Priority:    PriorityHigh,
		DueDate:     &due,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	s := task.Snapshot()

	assert.Equal(t, int64(3), s.ID)
	assert.Equal(t, "pending", s.Status)
	assert.Equal(t, "high", s.Priority)
	require.NotNil(t, s.DueDate)
	assert.Equal(t, "2025-03-02T08:30:00Z", *s.DueDate)
	assert.Equal(t, "2025-03-01T08:00:00Z", s.CreatedAt)
	assert.Equal(t, desc, *s.Description)
}

func TestResult_Builders(t *testing.T) {
	r := Succeeded("Found 2 tasks").WithTasks([]Task{NewTask("a"), NewTask("b")})
	assert.True(t, r.Success)
	assert.Len(t, r.Tasks, 2)
	assert.Nil(t, r.Task)

	cause := errors.New("Task not found")
	f := FailedWith("Task not found", cause)
	assert.False(t, f.Success)
	assert.ErrorIs(t, f.Err, cause)
	assert.Nil(t, f.Task)
	assert.Nil(t, f.Tasks)

	one := Succeeded("ok").WithTask(NewTask("c"))
	require.NotNil(t, one.Task)
	assert.Equal(t, "c", one.Task.Title)
}
