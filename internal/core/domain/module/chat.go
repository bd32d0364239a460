package module

import (
	"context"
	"fmt"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"strings"
)

const chatUsage = "Usage: /chat <prompt>"

// Chat forwards /chat prompts to a text generator and replies with the completion.
type Chat struct {
	nop
	generator port.TextGenerator
}

func NewChat(r port.CommandRegistry, generator port.TextGenerator) *Chat {
	c := &Chat{generator: generator}
	r.Register("chat", c.chat)

	return c
}

func (c *Chat) chat(ctx context.Context, cmd domain.Command) (string, error) {
	prompt := strings.Join(cmd.Args, " ")
	if prompt == "" {
		return chatUsage, nil
	}

	resp, err := c.generator.GenerateFromPrompt(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return resp, nil
}
