package service

import (
	"context"
	"errors"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/event"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMessage(ctx context.Context, chatID int64, text string, opts domain.SendOptions) error {
	return m.Called(ctx, chatID, text, opts).Error(0)
}

func command(name string, args ...string) domain.Command {
	return domain.Command{
		Message: &message.Text{
			Base: message.Base{ID: 3, Chat: message.Chat{ID: 42, Type: message.ChatGroup}},
			Text: "/" + name,
		},
		Name: name,
		Args: args,
	}
}

func publish(t *testing.T, bus *event.Bus[domain.Command], cmd domain.Command) int {
	t.Helper()
	return bus.Publish(t.Context(), domain.CommandTopic(cmd.Name), cmd)
}

func TestRegisterReplacesPreviousHandler(t *testing.T) {
	bus := event.New[domain.Command]("commands")
	registry := NewRegistry("test", bus, new(MockSender))

	var calls []string
	first := registry.Register("ping", func(context.Context, domain.Command) (string, error) {
		calls = append(calls, "A")
		return "", nil
	})
	second := registry.Register("ping", func(context.Context, domain.Command) (string, error) {
		calls = append(calls, "B")
		return "", nil
	})

	publish(t, bus, command("ping"))

	assert.Equal(t, []string{"B"}, calls)
	assert.Equal(t, 1, bus.HandlerCount("command:ping"))
	assert.False(t, bus.Unsubscribe(first), "first binding should already be revoked")
	assert.True(t, bus.Unsubscribe(second))
}

func TestRegisterNormalizesName(t *testing.T) {
	bus := event.New[domain.Command]("commands")
	registry := NewRegistry("test", bus, new(MockSender))

	registry.Register("/Roll", func(context.Context, domain.Command) (string, error) { return "", nil })

	assert.Equal(t, []string{"roll"}, registry.ListCommands())
	assert.Equal(t, 1, bus.HandlerCount("command:roll"))
}

func TestUnregister(t *testing.T) {
	bus := event.New[domain.Command]("commands")
	registry := NewRegistry("test", bus, new(MockSender))

	calls := 0
	handler := func(context.Context, domain.Command) (string, error) {
		calls++
		return "", nil
	}

	registry.Register("ping", handler)
	registry.Register("pong", handler)

	registry.Unregister("ping")
	registry.Unregister("missing")

	publish(t, bus, command("ping"))
	publish(t, bus, command("pong"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"pong"}, registry.ListCommands())
}

func TestUnregisterAllOnlyTouchesOwnBindings(t *testing.T) {
	bus := event.New[domain.Command]("commands")
	sender := new(MockSender)

	mine := NewRegistry("mine", bus, sender)
	other := NewRegistry("other", bus, sender)

	noop := func(context.Context, domain.Command) (string, error) { return "", nil }

	mine.Register("ping", noop)
	mine.Register("roll", noop)
	other.Register("ping", noop)

	mine.UnregisterAll()

	assert.Empty(t, mine.ListCommands())
	assert.Equal(t, 0, bus.HandlerCount("command:roll"))
	assert.Equal(t, 1, bus.HandlerCount("command:ping"))
	assert.Equal(t, []string{"ping"}, other.ListCommands())
}

func TestReplyIsSentToOriginatingChat(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		handlerErr   error
		sendErr      error
		expectSend   bool
		wantFailures int
	}{
		{
			name:       "reply is sent",
			reply:      "Thump.",
			expectSend: true,
		},
		{
			name:  "empty reply sends nothing",
			reply: "",
		},
		{
			name:         "handler error is not shown to the chat",
			reply:        "partial",
			handlerErr:   errors.New("broken"),
			wantFailures: 1,
		},
		{
			name:         "failed send counts as handler failure",
			reply:        "Thump.",
			sendErr:      domain.ErrTransport,
			expectSend:   true,
			wantFailures: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bus := event.New[domain.Command]("commands")
			sender := new(MockSender)
			if tc.expectSend {
				sender.On("SendMessage", mock.Anything, int64(42), tc.reply, domain.SendOptions{}).
					Return(tc.sendErr).Once()
			}

			registry := NewRegistry("test", bus, sender)
			registry.Register("heartbeat", func(_ context.Context, cmd domain.Command) (string, error) {
				assert.Equal(t, []string{"fast"}, cmd.Args)
				return tc.reply, tc.handlerErr
			})

			failures := publish(t, bus, command("heartbeat", "fast"))

			assert.Equal(t, tc.wantFailures, failures)
			sender.AssertExpectations(t)
			if !tc.expectSend {
				sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRegistryReplyErrorWrapsSentinel(t *testing.T) {
	bus := event.New[domain.Command]("commands")
	sender := new(MockSender)
	sender.On("SendMessage", mock.Anything, int64(42), "hi", domain.SendOptions{}).Return(domain.ErrTransport)

	registry := NewRegistry("test", bus, sender)
	handler := registry.reply("hi", func(context.Context, domain.Command) (string, error) { return "hi", nil })

	err := handler(t.Context(), command("hi"))
	require.ErrorIs(t, err, domain.ErrSendingReplyFailed)
	require.ErrorIs(t, err, domain.ErrTransport)
}
