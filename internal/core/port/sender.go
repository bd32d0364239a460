package port

import (
	"context"
	"horsefax/internal/core/domain"
)

type TextSender interface {
	// SendMessage sends text to the given chat, split into several messages when it is too long.
	SendMessage(ctx context.Context, chatID int64, text string, opts domain.SendOptions) error
}
