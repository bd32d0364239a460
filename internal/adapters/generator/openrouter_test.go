package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for the chatCompleter interface.
type mockClient struct {
	createChatCompletionFunc func(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

func (m *mockClient) CreateChatCompletion(ctx context.Context,
	ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	return m.createChatCompletionFunc(ctx, ccr)
}

func TestOpenRouter_GenerateFromPrompt(t *testing.T) {
	testCases := []struct {
		name         string
		systemPrompt string
		prompt       string
		mockResp     openrouter.ChatCompletionResponse
		mockErr      error
		wantMessages int
		expectedResp string
		expectErr    bool
	}{
		{
			name:         "success with system prompt",
			systemPrompt: "you are a horse",
			prompt:       "hi",
			mockResp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{{
					Message: openrouter.ChatCompletionMessage{
						Content: openrouter.Content{Text: "neigh!"},
					},
				}},
				Model: "openai/gpt-4.1",
				Usage: &openrouter.Usage{CompletionTokens: 2, TotalTokens: 9},
			},
			wantMessages: 2,
			expectedResp: "neigh!",
		},
		{
			name:   "success without system prompt",
			prompt: "hi",
			mockResp: openrouter.ChatCompletionResponse{
				Choices: []openrouter.ChatCompletionChoice{{
					Message: openrouter.ChatCompletionMessage{
						Content: openrouter.Content{Text: "hello!"},
					},
				}},
			},
			wantMessages: 1,
			expectedResp: "hello!",
		},
		{
			name:         "API error returned",
			prompt:       "fail",
			mockErr:      errors.New("api failure"),
			wantMessages: 1,
			expectErr:    true,
		},
		{
			name:         "no choices",
			prompt:       "empty",
			wantMessages: 1,
			expectErr:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockClient{
				createChatCompletionFunc: func(_ context.Context,
					ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
					assert.Equal(t, "openai/gpt-4.1", ccr.Model)
					require.Len(t, ccr.Messages, tc.wantMessages)

					last := ccr.Messages[len(ccr.Messages)-1]
					assert.Equal(t, openrouter.ChatMessageRoleUser, last.Role)
					assert.Equal(t, tc.prompt, last.Content.Text)

					return tc.mockResp, tc.mockErr
				},
			}
			gen := &OpenRouter{
				client:       mock,
				model:        "openai/gpt-4.1",
				systemPrompt: tc.systemPrompt,
			}

			resp, err := gen.GenerateFromPrompt(t.Context(), tc.prompt)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedResp, resp)
			}
		})
	}
}
