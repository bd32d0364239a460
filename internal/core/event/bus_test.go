package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrder(t *testing.T) {
	bus := New[int]("test")

	var calls []string
	bus.Subscribe("n", func(_ context.Context, n int) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe("n", func(_ context.Context, n int) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe("other", func(_ context.Context, n int) error {
		calls = append(calls, "other")
		return nil
	})

	failures := bus.Publish(t.Context(), "n", 1)

	assert.Equal(t, 0, failures)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := New[string]("test")

	assert.Equal(t, 0, bus.Publish(t.Context(), "nobody", "hello"))
}

func TestHandlerIsolation(t *testing.T) {
	var failedTopics []string
	bus := New[int]("test", WithFailureHook(func(topic string, _ error) {
		failedTopics = append(failedTopics, topic)
	}))

	var first, second []int
	bus.Subscribe("update", func(_ context.Context, id int) error {
		if id == 10 {
			return errors.New("boom")
		}
		first = append(first, id)
		return nil
	})
	bus.Subscribe("update", func(_ context.Context, id int) error {
		second = append(second, id)
		return nil
	})

	assert.Equal(t, 1, bus.Publish(t.Context(), "update", 10))
	assert.Equal(t, 0, bus.Publish(t.Context(), "update", 11))

	assert.Equal(t, []int{11}, first)
	assert.Equal(t, []int{10, 11}, second)
	assert.Equal(t, []string{"update"}, failedTopics)
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := New[int]("test")

	called := false
	bus.Subscribe("t", func(_ context.Context, _ int) error {
		panic("handler exploded")
	})
	bus.Subscribe("t", func(_ context.Context, _ int) error {
		called = true
		return nil
	})

	require.NotPanics(t, func() {
		assert.Equal(t, 1, bus.Publish(t.Context(), "t", 1))
	})
	assert.True(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := New[int]("test")

	calls := 0
	sub := bus.Subscribe("t", func(_ context.Context, _ int) error {
		calls++
		return nil
	})
	assert.True(t, sub.Valid())
	assert.Equal(t, "t", sub.Topic())
	assert.Equal(t, 1, bus.HandlerCount("t"))

	assert.True(t, bus.Unsubscribe(sub))
	assert.False(t, bus.Unsubscribe(sub))
	assert.False(t, bus.Unsubscribe(Subscription{}))
	assert.Equal(t, 0, bus.HandlerCount("t"))

	bus.Publish(t.Context(), "t", 1)
	assert.Equal(t, 0, calls)
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	bus := New[int]("test")

	var second Subscription
	secondCalls := 0

	bus.Subscribe("t", func(_ context.Context, _ int) error {
		bus.Unsubscribe(second)
		return nil
	})
	second = bus.Subscribe("t", func(_ context.Context, _ int) error {
		secondCalls++
		return nil
	})

	require.NotPanics(t, func() {
		bus.Publish(t.Context(), "t", 1)
	})
	// the running publish keeps its snapshot
	assert.Equal(t, 1, secondCalls)

	bus.Publish(t.Context(), "t", 2)
	assert.Equal(t, 1, secondCalls)
	assert.Equal(t, 1, bus.HandlerCount("t"))
}

func TestSubscribeDuringPublish(t *testing.T) {
	bus := New[int]("test")

	added := 0
	bus.Subscribe("t", func(_ context.Context, n int) error {
		if n == 1 {
			bus.Subscribe("t", func(_ context.Context, _ int) error {
				added++
				return nil
			})
		}
		return nil
	})

	bus.Publish(t.Context(), "t", 1)
	assert.Equal(t, 0, added)

	bus.Publish(t.Context(), "t", 2)
	assert.Equal(t, 1, added)
}
