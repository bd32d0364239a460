package service

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/event"
	"horsefax/internal/core/port"
	"sync"

	"github.com/rs/zerolog/log"
)

// UpdateTopic carries every raw update before decoding.
const UpdateTopic = "update"

// messageTopics are the update payloads decoded into messages. Each one is published on the
// topic of the same name.
var messageTopics = []string{
	message.UpdateMessage,
	message.UpdateEditedMessage,
	message.UpdateChannelPost,
	message.UpdateEditedChannelPost,
}

// Telegram turns raw updates into decoded messages and publishes both.
type Telegram struct {
	transport port.Transport
	tracker   *UsageTracker

	Updates  *event.Bus[message.Update]
	Messages *event.Bus[message.Message]

	mu sync.RWMutex
	me *message.User
}

func NewTelegram(transport port.Transport, tracker *UsageTracker) *Telegram {
	return &Telegram{
		transport: transport,
		tracker:   tracker,
		Updates:   event.New[message.Update]("updates", event.WithFailureHook(tracker.TrackFailure)),
		Messages:  event.New[message.Message]("messages", event.WithFailureHook(tracker.TrackFailure)),
	}
}

// HandleUpdate is the transport's update handler.
func (t *Telegram) HandleUpdate(ctx context.Context, u message.Update) error {
	l := log.With().Int64("updateId", u.ID).Logger()

	t.tracker.TrackUpdate()
	t.Updates.Publish(ctx, UpdateTopic, u)

	for _, topic := range messageTopics {
		payload, ok, err := u.Payload(topic)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		msg, err := message.Decode(payload)
		if err != nil {
			return fmt.Errorf("failed to decode %s of update %d: %w", topic, u.ID, err)
		}

		l.Debug().Str("topic", topic).Str("kind", string(msg.Kind())).Int64("chatId", msg.Header().Chat.ID).
			Msg("publishing message")

		t.tracker.TrackMessage(msg.Kind())
		t.Messages.Publish(ctx, topic, msg)

		return nil
	}

	l.Debug().Msg("update carries no message payload")

	return nil
}

// Identify asks the remote service who the bot is. The answer is cached; later calls return it
// without another request.
func (t *Telegram) Identify(ctx context.Context) (message.User, error) {
	if me, ok := t.Me(); ok {
		return me, nil
	}

	raw, err := t.transport.Send(ctx, "getMe", nil)
	if err != nil {
		return message.User{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	me, err := message.DecodeUser(raw)
	if err != nil {
		return message.User{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	t.mu.Lock()
	t.me = &me
	t.mu.Unlock()

	log.Info().Int64("id", me.ID).Str("username", me.Username).Msg("identified bot account")

	return me, nil
}

// Me returns the cached identity, and false before Identify succeeded.
func (t *Telegram) Me() (message.User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.me == nil {
		return message.User{}, false
	}

	return *t.me, true
}

// Username returns the bot's username, or domain.ErrNotIdentified before Identify succeeded.
func (t *Telegram) Username() (string, error) {
	me, ok := t.Me()
	if !ok {
		return "", domain.ErrNotIdentified
	}

	return me.Username, nil
}
