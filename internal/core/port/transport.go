package port

import (
	"context"
	"encoding/json"
	"horsefax/internal/core/domain/message"
)

// UpdateHandler is invoked once per received update, in update order, never concurrently.
type UpdateHandler func(ctx context.Context, update message.Update) error

type Transport interface {
	// Connect starts polling in the background and feeds every update to handler.
	Connect(ctx context.Context, handler UpdateHandler) error
	// Connected reports whether the polling loop is running.
	Connected() bool
	// Disconnect asks the polling loop to stop after the current poll and batch.
	Disconnect()
	// Done is closed once the polling loop has exited.
	Done() <-chan struct{}
	// Send performs one request against the remote API and returns the unwrapped result.
	Send(ctx context.Context, endpoint string, payload any) (json.RawMessage, error)
}

type CursorStore interface {
	Load() (int64, error)
	Save(cursor int64) error
	Close() error
}
