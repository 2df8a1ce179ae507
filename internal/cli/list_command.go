package cli

import (
	"context"
	"fmt"
	"strings"

	"task-assistant/internal/chat"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute lists tasks newest first. An optional first argument restricts
// the listing to one status.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	status := ""
	if len(args) > 0 {
		status = strings.TrimSpace(args[0])
	}

	tasks, err := c.app.businessAPI.RecentTasks(ctx, status)
	if err != nil {
		return NewErrorHandler().HandleSimple(err)
	}

	fmt.Fprintln(c.app.out, strings.TrimRight(chat.FormatTasks(tasks), "\n"))
	return nil
}
