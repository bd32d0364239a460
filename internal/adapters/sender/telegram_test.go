package sender

import (
	"context"
	"encoding/json"
	"errors"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context, handler port.UpdateHandler) error {
	return m.Called(ctx, handler).Error(0)
}

func (m *MockTransport) Connected() bool {
	return m.Called().Bool(0)
}

func (m *MockTransport) Disconnect() {
	m.Called()
}

func (m *MockTransport) Done() <-chan struct{} {
	ch, _ := m.Called().Get(0).(chan struct{})
	return ch
}

func (m *MockTransport) Send(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	args := m.Called(ctx, endpoint, payload)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func TestTelegramSender_SendMessage(t *testing.T) {
	longText := strings.Repeat("x", TelegramMessageLimit+10)

	tests := []struct {
		name      string
		text      string
		opts      domain.SendOptions
		wantCalls int
		setupMock func(mt *MockTransport)
		wantErr   bool
	}{
		{
			name:      "single message",
			text:      "hello",
			wantCalls: 1,
			setupMock: func(mt *MockTransport) {
				mt.On("Send", mock.Anything, "sendMessage", &bot.SendMessageParams{ChatID: int64(1001), Text: "hello"}).
					Return(json.RawMessage(`{"message_id":123}`), nil).
					Once()
			},
		},
		{
			name: "options are mapped",
			text: "`Pong!`",
			opts: domain.SendOptions{
				ParseMode:      models.ParseModeMarkdownV1,
				Silent:         true,
				DisablePreview: true,
				ReplyTo:        42,
			},
			wantCalls: 1,
			setupMock: func(mt *MockTransport) {
				mt.On("Send", mock.Anything, "sendMessage", &bot.SendMessageParams{
					ChatID:              int64(1001),
					Text:                "`Pong!`",
					ParseMode:           models.ParseModeMarkdownV1,
					LinkPreviewOptions:  &models.LinkPreviewOptions{IsDisabled: bot.True()},
					DisableNotification: true,
					ReplyParameters:     &models.ReplyParameters{MessageID: 42},
				}).
					Return(json.RawMessage(`{"message_id":124}`), nil).
					Once()
			},
		},
		{
			name:      "message chunked in two",
			text:      longText,
			opts:      domain.SendOptions{ReplyTo: 42},
			wantCalls: 2,
			setupMock: func(mt *MockTransport) {
				mt.On("Send", mock.Anything, "sendMessage", mock.MatchedBy(func(req *bot.SendMessageParams) bool {
					return utf8.RuneCountInString(req.Text) <= TelegramMessageLimit
				})).
					Return(json.RawMessage(`{"message_id":456}`), nil).
					Twice()
			},
		},
		{
			name:      "send fails on first",
			text:      "fail",
			wantCalls: 1,
			setupMock: func(mt *MockTransport) {
				mt.On("Send", mock.Anything, "sendMessage", mock.Anything).
					Return(nil, errors.New("fail")).
					Once()
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mt := new(MockTransport)
			sender := NewTelegramSender(mt)

			tc.setupMock(mt)
			err := sender.SendMessage(t.Context(), 1001, tc.text, tc.opts)

			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrSendingReplyFailed)
			} else {
				require.NoError(t, err)
			}
			mt.AssertNumberOfCalls(t, "Send", tc.wantCalls)
			mt.AssertExpectations(t)
		})
	}
}

func TestChunksOnlyReplyOnce(t *testing.T) {
	mt := new(MockTransport)
	sender := NewTelegramSender(mt)

	var sent []*bot.SendMessageParams
	mt.On("Send", mock.Anything, "sendMessage", mock.Anything).
		Run(func(args mock.Arguments) {
			sent = append(sent, args.Get(2).(*bot.SendMessageParams))
		}).
		Return(json.RawMessage(`{}`), nil)

	text := strings.Repeat("y", TelegramMessageLimit*2+1)
	require.NoError(t, sender.SendMessage(t.Context(), 7, text, domain.SendOptions{ReplyTo: 99}))

	require.Len(t, sent, 3)
	require.NotNil(t, sent[0].ReplyParameters)
	assert.Equal(t, 99, sent[0].ReplyParameters.MessageID)
	assert.Nil(t, sent[1].ReplyParameters)
	assert.Nil(t, sent[2].ReplyParameters)
	assert.Equal(t, text, sent[0].Text+sent[1].Text+sent[2].Text)
}

// The remote API must receive the field names it documents for sendMessage.
func TestSendMessageWireFormat(t *testing.T) {
	mt := new(MockTransport)
	sender := NewTelegramSender(mt)

	var body []byte
	mt.On("Send", mock.Anything, "sendMessage", mock.Anything).
		Run(func(args mock.Arguments) {
			var err error
			body, err = json.Marshal(args.Get(2))
			require.NoError(t, err)
		}).
		Return(json.RawMessage(`{}`), nil)

	err := sender.SendMessage(t.Context(), -100, "hi", domain.SendOptions{
		ParseMode:      models.ParseModeHTML,
		Silent:         true,
		DisablePreview: true,
		ReplyTo:        5,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"chat_id": -100,
		"text": "hi",
		"parse_mode": "HTML",
		"disable_notification": true,
		"link_preview_options": {"is_disabled": true},
		"reply_parameters": {"message_id": 5}
	}`, string(body))
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "short text",
			text:  "hello",
			limit: 10,
			want:  []string{"hello"},
		},
		{
			name:  "empty text",
			text:  "",
			limit: 10,
			want:  []string{""},
		},
		{
			name:  "hard cut",
			text:  "abcdefghij",
			limit: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:  "cut after newline",
			text:  "ab\ncdef\ngh",
			limit: 6,
			want:  []string{"ab\n", "cdef\n", "gh"},
		},
		{
			name:  "multibyte characters count once",
			text:  "äöüäöü",
			limit: 3,
			want:  []string{"äöü", "äöü"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitText(tc.text, tc.limit))
		})
	}
}
