package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/conversation"
	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
)

type apiCall struct {
	method string
	to     string
	what   interface{}
	opts   *telebot.SendOptions
	toast  string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	// errs are returned by consecutive calls before succeeding.
	errs []error
}

func (f *fakeAPI) record(call apiCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func options(opts []interface{}) *telebot.SendOptions {
	for _, opt := range opts {
		if sendOpts, ok := opt.(*telebot.SendOptions); ok {
			return sendOpts
		}
	}
	return nil
}

func (f *fakeAPI) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	return &telebot.Message{}, f.record(apiCall{method: "send", to: to.Recipient(), what: what, opts: options(opts)})
}

func (f *fakeAPI) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	messageID, _ := msg.MessageSig()
	return &telebot.Message{}, f.record(apiCall{method: "edit", to: messageID, what: what, opts: options(opts)})
}

func (f *fakeAPI) Respond(_ *telebot.Callback, resp ...*telebot.CallbackResponse) error {
	call := apiCall{method: "respond"}
	if len(resp) > 0 {
		call.toast = resp[0].Text
	}
	return f.record(call)
}

func newTestTransport(api API) *Transport {
	transport := NewTransport(api, testLogger())
	transport.retry = apperrors.RetryPolicy{MaxRetries: 2, InitialBackoff: time.Millisecond, Multiplier: 1}
	return transport
}

func TestTransport_ExecuteCallbackIntents(t *testing.T) {
	api := &fakeAPI{}
	transport := newTestTransport(api)

	cb := &telebot.Callback{ID: "1", Message: &telebot.Message{ID: 42, Chat: &telebot.Chat{ID: 7}}}
	kb := &keyboard.Inline{Rows: [][]keyboard.Button{{{Text: "➡️ Вперед", Data: "order_search_page_1"}}}}

	err := transport.Execute(context.Background(), cb, []conversation.Intent{
		{Kind: conversation.KindAck, ChatID: 7, Toast: "stale"},
		{Kind: conversation.KindEdit, ChatID: 7, Text: "page 2", Inline: kb},
	})
	require.NoError(t, err)

	require.Len(t, api.calls, 2)
	assert.Equal(t, "respond", api.calls[0].method)
	assert.Equal(t, "stale", api.calls[0].toast)

	assert.Equal(t, "edit", api.calls[1].method)
	assert.Equal(t, "42", api.calls[1].to)
	assert.Equal(t, "page 2", api.calls[1].what)
	require.NotNil(t, api.calls[1].opts.ReplyMarkup)
	assert.Equal(t, "order_search_page_1", api.calls[1].opts.ReplyMarkup.InlineKeyboard[0][0].Data)
	assert.Empty(t, api.calls[1].opts.ReplyMarkup.InlineKeyboard[0][0].Unique)
}

func TestTransport_ExecuteMessageIntents(t *testing.T) {
	api := &fakeAPI{}
	transport := newTestTransport(api)

	err := transport.Execute(context.Background(), nil, []conversation.Intent{
		{Kind: conversation.KindAck, ChatID: 7},
		{Kind: conversation.KindSend, ChatID: 7, Text: "*bold*", Markdown: true},
		{Kind: conversation.KindEdit, ChatID: 7, Text: "fallback"},
		{Kind: conversation.KindDocument, ChatID: 7, Document: &conversation.Document{FileName: "products.xlsx", Caption: "ready", Data: []byte("x")}},
	})
	require.NoError(t, err)

	require.Len(t, api.calls, 3)
	assert.Equal(t, "send", api.calls[0].method)
	assert.Equal(t, "7", api.calls[0].to)
	assert.Equal(t, telebot.ModeMarkdown, api.calls[0].opts.ParseMode)

	assert.Equal(t, "send", api.calls[1].method)
	assert.Equal(t, "fallback", api.calls[1].what)
	assert.Empty(t, api.calls[1].opts.ParseMode)

	doc, ok := api.calls[2].what.(*telebot.Document)
	require.True(t, ok)
	assert.Equal(t, "products.xlsx", doc.FileName)
	assert.Equal(t, "ready", doc.Caption)
}

func TestTransport_ExecuteContinuesAfterFailure(t *testing.T) {
	api := &fakeAPI{errs: []error{telebot.ErrBlockedByUser}}
	transport := newTestTransport(api)

	err := transport.Execute(context.Background(), nil, []conversation.Intent{
		{Kind: conversation.KindSend, ChatID: 7, Text: "first"},
		{Kind: conversation.KindSend, ChatID: 7, Text: "second"},
	})

	assert.ErrorIs(t, err, telebot.ErrBlockedByUser)
	assert.Len(t, api.calls, 2)
}

func TestTransport_PostRetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{errs: []error{&telebot.Error{Code: 502, Description: "Bad Gateway"}}}
	transport := newTestTransport(api)

	err := transport.Post(context.Background(), conversation.Target{ChatID: -100, ThreadID: 5}, "order", false)
	require.NoError(t, err)

	require.Len(t, api.calls, 2)
	assert.Equal(t, "-100", api.calls[1].to)
	assert.Equal(t, 5, api.calls[1].opts.ThreadID)
}

func TestTransport_PostGivesUp(t *testing.T) {
	gateway := &telebot.Error{Code: 502, Description: "Bad Gateway"}
	api := &fakeAPI{errs: []error{gateway, gateway, gateway, gateway}}
	transport := newTestTransport(api)

	err := transport.Post(context.Background(), conversation.Target{ChatID: -100}, "order", true)

	var apiErr *telebot.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 502, apiErr.Code)
	assert.Len(t, api.calls, 3)
}

func TestTransport_PostDoesNotRetryPermanentErrors(t *testing.T) {
	api := &fakeAPI{errs: []error{telebot.ErrChatNotFound}}
	transport := newTestTransport(api)

	err := transport.Post(context.Background(), conversation.Target{ChatID: -100}, "order", false)

	assert.ErrorIs(t, err, telebot.ErrChatNotFound)
	assert.Len(t, api.calls, 1)
}
