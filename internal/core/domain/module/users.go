package module

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/domain/message"
	"horsefax/internal/core/event"
	"horsefax/internal/core/port"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// maxReplyDepth bounds how far a reply chain is followed when tracking users.
const maxReplyDepth = 8

const whoisUsage = "Usage: /whois <username>"

// Users remembers every account and chat membership it sees in messages and answers lookups.
type Users struct {
	messages *event.Bus[message.Message]
	sub      event.Subscription

	mu         sync.RWMutex
	byID       map[int64]message.User
	byUsername map[string]int64
	members    map[int64]map[int64]struct{}
}

func NewUsers(b port.Bot, r port.CommandRegistry) *Users {
	u := &Users{
		messages:   b.Messages(),
		byID:       make(map[int64]message.User),
		byUsername: make(map[string]int64),
		members:    make(map[int64]map[int64]struct{}),
	}

	u.sub = u.messages.Subscribe(message.UpdateMessage, u.handle)
	r.Register("whois", u.whois)
	r.Register("members", u.countMembers)

	return u
}

// Teardown stops tracking. Everything seen so far is kept.
func (u *Users) Teardown() {
	u.messages.Unsubscribe(u.sub)
}

func (u *Users) handle(_ context.Context, msg message.Message) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	h := msg.Header()
	u.track(h, 0)

	switch m := msg.(type) {
	case *message.UsersJoined:
		for _, joined := range m.Users {
			u.remember(joined)
			u.join(h.Chat.ID, joined.ID)
		}
	case *message.UserLeft:
		u.remember(m.User)
		delete(u.members[h.Chat.ID], m.User.ID)
	case *message.ChatMigratedFrom:
		for id := range u.members[m.ChatID] {
			u.join(h.Chat.ID, id)
		}
		delete(u.members, m.ChatID)
	}

	return nil
}

func (u *Users) track(b *message.Base, depth int) {
	if depth >= maxReplyDepth {
		log.Debug().Int64("messageId", b.ID).Msg("reply chain too deep, not following")
		return
	}

	if b.Sender != nil {
		u.remember(*b.Sender)
		if b.Chat.Type != message.ChatPrivate {
			u.join(b.Chat.ID, b.Sender.ID)
		}
	}
	if b.ForwardFrom != nil {
		u.remember(*b.ForwardFrom)
	}
	if b.ReplyTo != nil {
		u.track(b.ReplyTo, depth+1)
	}
}

func (u *Users) remember(user message.User) {
	if prev, ok := u.byID[user.ID]; ok && prev.Username != "" {
		delete(u.byUsername, strings.ToLower(prev.Username))
	}

	u.byID[user.ID] = user
	if user.Username != "" {
		u.byUsername[strings.ToLower(user.Username)] = user.ID
	}
}

func (u *Users) join(chatID, userID int64) {
	if u.members[chatID] == nil {
		u.members[chatID] = make(map[int64]struct{})
	}
	u.members[chatID][userID] = struct{}{}
}

// UserByUsername looks up an account by username, case insensitively and with or without "@".
func (u *Users) UserByUsername(username string) (message.User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	id, ok := u.byUsername[strings.ToLower(strings.TrimPrefix(username, "@"))]
	if !ok {
		return message.User{}, false
	}

	return u.byID[id], true
}

func (u *Users) whois(_ context.Context, cmd domain.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return whoisUsage, nil
	}

	name := strings.TrimPrefix(cmd.Args[0], "@")

	user, ok := u.UserByUsername(name)
	if !ok {
		return fmt.Sprintf("I haven't seen @%s.", name), nil
	}

	return fmt.Sprintf("%s (@%s), id %d", displayName(user), user.Username, user.ID), nil
}

func (u *Users) countMembers(_ context.Context, cmd domain.Command) (string, error) {
	u.mu.RLock()
	n := len(u.members[cmd.ChatID()])
	u.mu.RUnlock()

	if n == 1 {
		return "I've seen 1 member here.", nil
	}

	return fmt.Sprintf("I've seen %d members here.", n), nil
}

func displayName(user message.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}

	return name
}
