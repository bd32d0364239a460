package service

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/event"
	"horsefax/internal/core/port"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry binds command handlers of one module to the shared command bus. Every module gets its
// own Registry, so tearing a module down revokes exactly the bindings it made.
type Registry struct {
	owner  string
	bus    *event.Bus[domain.Command]
	sender port.TextSender

	mu       sync.Mutex
	commands map[string]event.Subscription
}

func NewRegistry(owner string, bus *event.Bus[domain.Command], sender port.TextSender) *Registry {
	return &Registry{
		owner:    owner,
		bus:      bus,
		sender:   sender,
		commands: make(map[string]event.Subscription),
	}
}

func (r *Registry) Register(name string, handler port.CommandHandler) event.Subscription {
	name = domain.NormalizeCommandName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.commands[name]; ok {
		r.bus.Unsubscribe(prev)
		log.Debug().Str("module", r.owner).Str("command", name).Msg("replacing command handler")
	}

	sub := r.bus.Subscribe(domain.CommandTopic(name), r.reply(name, handler))
	r.commands[name] = sub

	log.Info().Str("module", r.owner).Str("command", name).Msg("adding command handler to registry")

	return sub
}

func (r *Registry) Unregister(name string) {
	name = domain.NormalizeCommandName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.commands[name]
	if !ok {
		return
	}

	r.bus.Unsubscribe(sub)
	delete(r.commands, name)

	log.Info().Str("module", r.owner).Str("command", name).Msg("removed command handler from registry")
}

func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, sub := range r.commands {
		r.bus.Unsubscribe(sub)
		delete(r.commands, name)
	}

	log.Info().Str("module", r.owner).Msg("removed all command handlers")
}

func (r *Registry) ListCommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// reply wraps handler so that a non-empty result is sent back to the chat the command came from.
func (r *Registry) reply(name string, handler port.CommandHandler) event.Handler[domain.Command] {
	return func(ctx context.Context, cmd domain.Command) error {
		l := log.With().
			Str("module", r.owner).
			Str("command", name).
			Int64("chatId", cmd.ChatID()).
			Int64("messageId", cmd.Message.ID).
			Logger()

		l.Debug().Strs("args", cmd.Args).Msg("handling command")

		text, err := handler(ctx, cmd)
		if err != nil {
			return fmt.Errorf("command %s failed: %w", name, err)
		}

		if text == "" {
			return nil
		}

		if err := r.sender.SendMessage(ctx, cmd.ChatID(), text, domain.SendOptions{}); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}

		l.Debug().Msg("sent command reply")

		return nil
	}
}
