package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/conversation"
	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
)

// API is the subset of *telebot.Bot used to deliver intents.
type API interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error
}

// Transport turns conversation intents into Telegram API calls.
type Transport struct {
	api   API
	log   *slog.Logger
	retry apperrors.RetryPolicy
}

// NewTransport wraps api. Failed calls are retried with the default policy
// when Telegram reports a transient failure.
func NewTransport(api API, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}

	return &Transport{
		api:   api,
		log:   log.With(slog.String("component", "transport")),
		retry: apperrors.DefaultRetryPolicy,
	}
}

// Execute performs intents in order. cb is the callback that triggered them,
// nil for messages. A failed intent does not stop the remaining ones.
func (t *Transport) Execute(ctx context.Context, cb *telebot.Callback, intents []conversation.Intent) error {
	var errs []error

	for _, intent := range intents {
		if err := t.execute(ctx, cb, intent); err != nil {
			t.log.WarnContext(ctx, "failed to deliver intent",
				slog.String("kind", intent.Kind.String()),
				slog.Int64("chat_id", intent.ChatID),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", intent.Kind, err))
		}
	}

	return errors.Join(errs...)
}

func (t *Transport) execute(ctx context.Context, cb *telebot.Callback, intent conversation.Intent) error {
	switch intent.Kind {
	case conversation.KindAck:
		if cb == nil {
			return nil
		}
		return t.api.Respond(cb, &telebot.CallbackResponse{Text: intent.Toast})
	case conversation.KindEdit:
		if cb == nil || cb.Message == nil {
			return t.send(ctx, telebot.ChatID(intent.ChatID), intent.Text, messageOptions(intent, 0))
		}
		return t.call(ctx, func() error {
			_, err := t.api.Edit(cb.Message, intent.Text, messageOptions(intent, 0))
			return err
		})
	case conversation.KindDocument:
		if intent.Document == nil {
			return nil
		}
		doc := intent.Document
		return t.call(ctx, func() error {
			_, err := t.api.Send(telebot.ChatID(intent.ChatID), &telebot.Document{
				File:     telebot.FromReader(bytes.NewReader(doc.Data)),
				FileName: doc.FileName,
				Caption:  doc.Caption,
			})
			return err
		})
	case conversation.KindSend:
		return t.send(ctx, telebot.ChatID(intent.ChatID), intent.Text, messageOptions(intent, 0))
	default:
		return fmt.Errorf("unsupported intent kind %d", intent.Kind)
	}
}

// Post sends text to a channel, optionally to a forum topic.
func (t *Transport) Post(ctx context.Context, target conversation.Target, text string, markdown bool) error {
	return t.send(ctx, telebot.ChatID(target.ChatID), text, messageOptions(conversation.Intent{Markdown: markdown}, target.ThreadID))
}

func (t *Transport) send(ctx context.Context, to telebot.Recipient, text string, opts *telebot.SendOptions) error {
	return t.call(ctx, func() error {
		_, err := t.api.Send(to, text, opts)
		return err
	})
}

// call retries fn while Telegram answers with a transient failure.
func (t *Transport) call(ctx context.Context, fn func() error) error {
	err := t.retry.Do(ctx, func() error {
		if err := fn(); err != nil {
			if transient(err) {
				return apperrors.NewExternalAPIError("telegram", err)
			}
			return err
		}
		return nil
	})

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Cause() != nil {
		return appErr.Cause()
	}
	return err
}

func messageOptions(intent conversation.Intent, threadID int) *telebot.SendOptions {
	opts := &telebot.SendOptions{
		ThreadID:    threadID,
		ReplyMarkup: keyboard.Markup(intent.Inline, intent.Reply),
	}
	if intent.Markdown {
		opts.ParseMode = telebot.ModeMarkdown
	}
	return opts
}

// transient reports failures worth retrying: flood control, server side
// errors and network faults.
func transient(err error) bool {
	var flood telebot.FloodError
	if errors.As(err, &flood) {
		return true
	}

	var apiErr *telebot.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

var _ conversation.Broadcaster = (*Transport)(nil)
