package port

import (
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/event"
)

// Bot is what a module sees of the running bot.
type Bot interface {
	TextSender
	// Me returns the bot's own account, as reported by the remote service at startup.
	Me() message.User
	// Messages is the bus carrying decoded messages, keyed by update payload type.
	Messages() *event.Bus[message.Message]
}

// Module is an installed unit of functionality. Teardown releases everything the module holds
// besides its command bindings, which the bot revokes on its own.
type Module interface {
	Teardown()
}
