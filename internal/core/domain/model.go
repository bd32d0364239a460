package domain

import "github.com/go-telegram/bot/models"

// SendOptions tunes an outbound text message. The zero value sends plain text with link previews
// and notifications enabled.
type SendOptions struct {
	ParseMode      models.ParseMode
	Silent         bool
	DisablePreview bool
	ReplyTo        int64
}
