package service

import (
	"slices"

	"github.com/rs/zerolog/log"
)

type Authorizer interface {
	IsAuthorized(chatID int64) bool
}

// ChatAuthorizer admits commands from the allowlisted chats only. An empty allowlist admits
// every chat.
type ChatAuthorizer struct {
	allowlist []int64
}

func NewAuthorizer(allowlist []int64) *ChatAuthorizer {
	if len(allowlist) == 0 {
		log.Info().Msg("no chat allowlist configured, accepting commands from all chats")
	}

	return &ChatAuthorizer{allowlist: slices.Clone(allowlist)}
}

func (a *ChatAuthorizer) IsAuthorized(chatID int64) bool {
	if len(a.allowlist) == 0 {
		return true
	}

	if slices.Contains(a.allowlist, chatID) {
		return true
	}

	log.Debug().Int64("chatId", chatID).Msg("chat not in allowlist")

	return false
}
