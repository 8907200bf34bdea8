package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/bot/handlers"
	errors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/pkg/logger"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler, userMsg string) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx := handlers.Context(c)
					log.ErrorContext(ctx, "panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					if errHandler != nil {
						errHandler.Handle(ctx, errors.NewStateError(fmt.Sprintf("panic recovered: %v", r)))
					}

					if c != nil && c.Chat() != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.ErrorContext(ctx, "failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware reports delivery failures through the centralized handler.
// The chat is not notified since the failure was talking to it.
func ErrorHandlingMiddleware(errHandler *errors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			if errHandler != nil {
				errHandler.Handle(handlers.Context(c), errors.NewExternalAPIError("telegram", err))
			}

			return err
		}
	}
}

// LoggingMiddleware starts the request context for an update and logs basic telemetry about it.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()

			chatID := int64(0)
			if chat := c.Chat(); chat != nil {
				chatID = chat.ID
			}

			ctx := logger.WithChatID(logger.WithCorrelationID(handlers.Context(c)), chatID)
			handlers.WithContext(c, ctx)

			action := c.Text()
			if cb := c.Callback(); cb != nil {
				action = cb.Data
			}

			log.DebugContext(ctx, "handling update", slog.Int("update_id", c.Update().ID), slog.String("action", action))
			err := next(c)
			log.InfoContext(ctx, "handled update",
				slog.Int("update_id", c.Update().ID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}
