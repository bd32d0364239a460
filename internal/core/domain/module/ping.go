package module

import (
	"context"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"

	"github.com/go-telegram/bot/models"
)

// Ping answers /ping itself instead of returning a reply, to send it as Markdown.
type Ping struct {
	nop
	bot port.Bot
}

func NewPing(b port.Bot, r port.CommandRegistry) *Ping {
	p := &Ping{bot: b}
	r.Register("ping", p.ping)

	return p
}

func (p *Ping) ping(ctx context.Context, cmd domain.Command) (string, error) {
	return "", p.bot.SendMessage(ctx, cmd.ChatID(), "`Pong!`", domain.SendOptions{
		ParseMode: models.ParseModeMarkdownV1,
	})
}
