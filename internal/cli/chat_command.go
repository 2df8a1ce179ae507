package cli

import (
	"context"
	"fmt"
	"strings"

	"task-assistant/internal/errors"
)

// ChatCommand runs one message through the conversation pipeline.
type ChatCommand struct {
	app *App
}

// NewChatCommand creates a new chat command handler
func NewChatCommand(app *App) *ChatCommand {
	return &ChatCommand{app: app}
}

func (c *ChatCommand) Execute(ctx context.Context, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return errors.NewValidationError("message is required", nil)
	}

	reply := c.app.businessAPI.Chat(ctx, message)
	if !reply.Success {
		return fmt.Errorf("%s", reply.Response)
	}

	fmt.Fprintln(c.app.out, reply.Response)
	return nil
}
