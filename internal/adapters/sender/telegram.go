package sender

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TelegramMessageLimit is the longest text, in characters, a single sendMessage call accepts.
const TelegramMessageLimit = 4096

type TelegramSender struct {
	transport port.Transport
}

func NewTelegramSender(transport port.Transport) *TelegramSender {
	return &TelegramSender{transport: transport}
}

// SendMessage sends text to chatID. Texts over TelegramMessageLimit go out as several messages;
// only the first one replies to opts.ReplyTo.
func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string, opts domain.SendOptions) error {
	l := log.With().Int64("chatId", chatID).Logger()

	for i, chunk := range splitText(text, TelegramMessageLimit) {
		params := &bot.SendMessageParams{
			ChatID:              chatID,
			Text:                chunk,
			ParseMode:           opts.ParseMode,
			DisableNotification: opts.Silent,
		}
		if opts.DisablePreview {
			params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: bot.True()}
		}
		if i == 0 && opts.ReplyTo != 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: int(opts.ReplyTo)}
		}

		if _, err := s.transport.Send(ctx, "sendMessage", params); err != nil {
			l.Error().Err(err).Int("chunk", i).Msg("failed to send message")
			return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}
	}

	l.Debug().Int("length", utf8.RuneCountInString(text)).Msg("sent message")

	return nil
}

// splitText cuts text into pieces of at most limit characters, preferring to cut after a newline.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)

	for len(runes) > limit {
		cut := limit
		if nl := strings.LastIndex(string(runes[:limit]), "\n"); nl > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit])[:nl+1])
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}

	return chunks
}
