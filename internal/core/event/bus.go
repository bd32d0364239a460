// Package event provides a synchronous, topic based publish/subscribe bus. Components that need
// to publish hold a Bus; the bus itself knows nothing about what it carries.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Handler receives one published payload. A returned error or a panic is logged by the bus and
// does not stop delivery to the remaining handlers.
type Handler[T any] func(ctx context.Context, payload T) error

// Subscription identifies one handler binding and is used to revoke it.
type Subscription struct {
	id    uuid.UUID
	topic string
}

func (s Subscription) Topic() string {
	return s.topic
}

func (s Subscription) Valid() bool {
	return s.id != uuid.Nil
}

// FailureFunc is notified for every handler that failed during a publish.
type FailureFunc func(topic string, err error)

type Option func(*options)

type options struct {
	onFailure FailureFunc
}

func WithFailureHook(f FailureFunc) Option {
	return func(o *options) {
		o.onFailure = f
	}
}

type subscriber[T any] struct {
	id      uuid.UUID
	handler Handler[T]
}

type Bus[T any] struct {
	name      string
	onFailure FailureFunc

	mu     sync.RWMutex
	topics map[string][]subscriber[T]
}

func New[T any](name string, opts ...Option) *Bus[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	return &Bus[T]{
		name:      name,
		onFailure: o.onFailure,
		topics:    make(map[string][]subscriber[T]),
	}
}

// Subscribe appends handler to the topic's handler list.
func (b *Bus[T]) Subscribe(topic string, handler Handler[T]) Subscription {
	sub := subscriber[T]{id: uuid.Must(uuid.NewV4()), handler: handler}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.topics[topic] = append(b.topics[topic], sub)

	log.Debug().Str("bus", b.name).Str("topic", topic).Str("subscription", sub.id.String()).
		Msg("handler subscribed")

	return Subscription{id: sub.id, topic: topic}
}

// Unsubscribe removes the binding and reports whether it was still active. A publish that is
// already running keeps the handler list it started with.
func (b *Bus[T]) Unsubscribe(s Subscription) bool {
	if !s.Valid() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[s.topic]
	for i, sub := range subs {
		if sub.id != s.id {
			continue
		}

		remaining := make([]subscriber[T], 0, len(subs)-1)
		remaining = append(remaining, subs[:i]...)
		remaining = append(remaining, subs[i+1:]...)

		if len(remaining) == 0 {
			delete(b.topics, s.topic)
		} else {
			b.topics[s.topic] = remaining
		}

		log.Debug().Str("bus", b.name).Str("topic", s.topic).Str("subscription", s.id.String()).
			Msg("handler unsubscribed")

		return true
	}

	return false
}

// Publish calls every handler subscribed to topic, in subscription order, on the caller's
// goroutine. It returns the number of handlers that failed.
func (b *Bus[T]) Publish(ctx context.Context, topic string, payload T) int {
	b.mu.RLock()
	subs := b.topics[topic]
	b.mu.RUnlock()

	failures := 0
	for _, sub := range subs {
		if err := b.deliver(ctx, sub, payload); err != nil {
			failures++

			log.Error().Err(err).Str("bus", b.name).Str("topic", topic).
				Str("subscription", sub.id.String()).Msg("event handler failed")

			if b.onFailure != nil {
				b.onFailure(topic, err)
			}
		}
	}

	return failures
}

func (b *Bus[T]) deliver(ctx context.Context, sub subscriber[T], payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return sub.handler(ctx, payload)
}

// HandlerCount returns the number of handlers currently subscribed to topic.
func (b *Bus[T]) HandlerCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}
