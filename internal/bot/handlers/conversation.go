package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/conversation"
)

// Engine is the conversation engine seen by the handlers.
type Engine interface {
	HandleText(ctx context.Context, chatID int64, text string) []conversation.Intent
	HandleCommand(ctx context.Context, chatID int64, command string) []conversation.Intent
	HandleCallback(ctx context.Context, chatID int64, data string) []conversation.Intent
}

// Executor delivers intents produced for an update.
type Executor interface {
	Execute(ctx context.Context, cb *telebot.Callback, intents []conversation.Intent) error
}

// NewTextHandler feeds plain messages to the engine.
func NewTextHandler(engine Engine, exec Executor) Handler {
	return func(c telebot.Context) error {
		chat := c.Chat()
		if chat == nil {
			return nil
		}

		ctx := Context(c)
		return exec.Execute(ctx, nil, engine.HandleText(ctx, chat.ID, c.Text()))
	}
}

// NewCommandHandler feeds slash commands to the engine.
func NewCommandHandler(engine Engine, exec Executor) Handler {
	return func(c telebot.Context) error {
		chat := c.Chat()
		if chat == nil {
			return nil
		}

		ctx := Context(c)
		return exec.Execute(ctx, nil, engine.HandleCommand(ctx, chat.ID, c.Text()))
	}
}

// NewCallbackHandler feeds inline button presses to the engine.
func NewCallbackHandler(engine Engine, exec Executor) Handler {
	return func(c telebot.Context) error {
		cb := c.Callback()
		chat := c.Chat()
		if cb == nil || chat == nil {
			return nil
		}

		ctx := Context(c)
		return exec.Execute(ctx, cb, engine.HandleCallback(ctx, chat.ID, cb.Data))
	}
}
