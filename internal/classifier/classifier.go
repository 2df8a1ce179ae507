// Package classifier is the boundary to the language model whose free-text
// reply drives intent selection.
package classifier

import (
	"context"
	"strings"
)

// Classifier returns free text describing what the user wants. The text is
// only ever keyword-matched, never parsed.
type Classifier interface {
	Classify(ctx context.Context, promptContext, utterance string) (string, error)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, promptContext, utterance string) (string, error)

func (f Func) Classify(ctx context.Context, promptContext, utterance string) (string, error) {
	return f(ctx, promptContext, utterance)
}

// Static answers every request with the same reply.
type Static string

func (s Static) Classify(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}

// Echo replies with the utterance itself, so the keyword rules see the
// user's own words. It is the offline provider.
type Echo struct{}

func (Echo) Classify(ctx context.Context, _, utterance string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.ToLower(utterance), nil
}

// SystemPrompt describes the available task operations to the model.
const SystemPrompt = `You are an AI task management assistant. You help users manage their tasks through natural language commands.

Available tools:
- create_task: Create a new task with title, description, due_date, priority
- update_task: Update an existing task by ID or title match
- delete_task: Delete a task by ID or title match
- list_tasks: List all tasks, optionally filtered by status
- filter_tasks: Filter tasks by priority, status, or due date

When users ask you to:
1. Create tasks: Use create_task tool
2. Update tasks: Use update_task tool (you can toggle status by setting status to "completed" or "pending")
3. Delete tasks: Use delete_task tool
4. List/show tasks: Use list_tasks or filter_tasks tools
5. Mark tasks as done/complete: Use update_task with status="completed"
6. Mark tasks as pending: Use update_task with status="pending"

Always be helpful and provide clear responses. When you use tools, explain what you're doing and the results.

Priority levels: low, medium, high, urgent
Status levels: pending, in_progress, completed, cancelled`
