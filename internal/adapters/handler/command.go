package handler

import (
	"context"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/event"
	"horsefax/internal/core/service"
	"strings"

	"github.com/rs/zerolog/log"
)

// Identity knows the bot's own username, used to ignore commands meant for other bots.
type Identity interface {
	Username() (string, error)
}

type Option func(*Command)

// WithAuthorizer drops commands from chats the authorizer rejects.
func WithAuthorizer(a service.Authorizer) Option {
	return func(c *Command) {
		c.authorizer = a
	}
}

func WithTracker(t *service.UsageTracker) Option {
	return func(c *Command) {
		c.tracker = t
	}
}

// Command routes text messages that look like commands onto the command bus.
type Command struct {
	commands   *event.Bus[domain.Command]
	identity   Identity
	authorizer service.Authorizer
	tracker    *service.UsageTracker
}

func NewCommand(commands *event.Bus[domain.Command], identity Identity, opts ...Option) *Command {
	c := &Command{commands: commands, identity: identity}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Subscribe attaches the router to the message topic of messages.
func (c *Command) Subscribe(messages *event.Bus[message.Message]) event.Subscription {
	return messages.Subscribe(message.UpdateMessage, c.Handle)
}

// Handle publishes msg as a command if it is one. Anything else is ignored without error.
func (c *Command) Handle(ctx context.Context, msg message.Message) error {
	text, ok := msg.(*message.Text)
	if !ok || text.Text == "" || !strings.HasPrefix(text.Text, "/") {
		return nil
	}

	name, target, args, ok := domain.ParseCommand(text.Text)
	if !ok {
		return nil
	}

	l := log.With().
		Int64("messageId", text.ID).
		Int64("chatId", text.Chat.ID).
		Str("command", name).
		Logger()

	if target != "" {
		username, err := c.identity.Username()
		if err != nil {
			l.Warn().Err(err).Msg("cannot check command target")
			return nil
		}

		if !strings.EqualFold(target, username) {
			l.Debug().Str("target", target).Msg("command addressed to another bot")
			return nil
		}
	}

	if c.authorizer != nil && !c.authorizer.IsAuthorized(text.Chat.ID) {
		l.Debug().Msg("dropping command from unauthorized chat")
		return nil
	}

	// names come straight from chat text, only bound ones may become metric labels
	topic := domain.CommandTopic(name)
	if c.commands.HandlerCount(topic) == 0 {
		l.Debug().Msg("no handler for command")
		return nil
	}

	l.Debug().Msg("received command")

	c.tracker.TrackCommand(name)
	c.commands.Publish(ctx, topic, domain.Command{
		Message: text,
		Name:    name,
		Args:    args,
	})

	return nil
}
