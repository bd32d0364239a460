package port

import (
	"context"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/event"
)

// CommandHandler handles one command. A non-empty reply is sent back to the originating chat.
type CommandHandler func(ctx context.Context, cmd domain.Command) (string, error)

type CommandRegistry interface {
	// Register binds handler to the command name, replacing any binding this registry already holds for it.
	Register(name string, handler CommandHandler) event.Subscription
	// Unregister removes the binding for name, if any.
	Unregister(name string)
	// UnregisterAll removes every binding held by this registry.
	UnregisterAll()
	// ListCommands returns the names currently bound by this registry.
	ListCommands() []string
}
