package domain

import (
	"horsefax/internal/core/domain/message"
	"strings"
)

const commandTopicPrefix = "command:"

// Command is a routable instruction parsed from a text message starting with "/".
type Command struct {
	Message *message.Text
	Name    string
	Args    []string
}

// ChatID returns the chat the command was sent in.
func (c Command) ChatID() int64 {
	return c.Message.Chat.ID
}

// CommandTopic returns the bus topic a command with the given name is published on.
func CommandTopic(name string) string {
	return commandTopicPrefix + NormalizeCommandName(name)
}

// NormalizeCommandName lowercases a command name and strips a leading "/".
func NormalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

// ParseCommand splits command text into its lowercased name, the optional "@botname" target and
// the whitespace separated arguments. ok is false when the text is not a command.
func ParseCommand(text string) (name, target string, args []string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", nil, false
	}

	parts := strings.Fields(text)
	raw := strings.TrimPrefix(parts[0], "/")

	if before, after, found := strings.Cut(raw, "@"); found {
		raw = before
		target = after
	}

	if raw == "" {
		return "", "", nil, false
	}

	return strings.ToLower(raw), target, parts[1:], true
}

// ParseCommandArgs returns everything after the command token, joined by single spaces.
func ParseCommandArgs(text string) string {
	_, _, args, ok := ParseCommand(text)
	if !ok {
		return ""
	}

	return strings.Join(args, " ")
}
