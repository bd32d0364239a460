package module

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompts []string
	resp    string
	err     error
}

func (g *fakeGenerator) GenerateFromPrompt(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.resp, g.err
}

func TestChat(t *testing.T) {
	generator := &fakeGenerator{resp: "Neigh."}
	registry := newFakeRegistry()
	NewChat(registry, generator)

	assert.Equal(t, "Neigh.", registry.run(t, "chat", "say", "hello"))
	assert.Equal(t, []string{"say hello"}, generator.prompts)
}

func TestChatUsage(t *testing.T) {
	generator := &fakeGenerator{}
	registry := newFakeRegistry()
	NewChat(registry, generator)

	assert.Equal(t, chatUsage, registry.run(t, "chat"))
	assert.Empty(t, generator.prompts)
}

func TestChatGeneratorError(t *testing.T) {
	registry := newFakeRegistry()
	NewChat(registry, &fakeGenerator{err: errors.New("quota exceeded")})

	_, err := registry.handlers["chat"](t.Context(), registry.command("chat", "hi"))
	require.Error(t, err)
}
