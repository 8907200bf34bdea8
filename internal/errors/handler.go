package errors

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/storefront-bot/pkg/logger"
)

const defaultUserMessage = "Произошла ошибка. Попробуйте позже"

// Reporter observes every handled error, e.g. to count it.
type Reporter func(code string, severity Severity)

type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
	report        Reporter
}

func NewHandler(log *slog.Logger, sentryEnabled bool, report Reporter) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if report == nil {
		report = func(string, Severity) {}
	}

	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
		report:        report,
	}
}

// Handle logs err, forwards serious failures to Sentry and returns the text
// to show the user together with the retryable flag.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	if ctx == nil {
		ctx = context.Background()
	}

	attrs := contextAttrs(ctx)

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		attrs = append(attrs,
			slog.String("code", appErr.Code),
			slog.String("message", appErr.Message),
			slog.String("severity", string(appErr.Severity)),
			slog.Bool("retryable", appErr.Retryable),
		)
		if cause := appErr.Unwrap(); cause != nil {
			attrs = append(attrs, slog.String("cause", cause.Error()))
		}

		level := slog.LevelError
		if appErr.Severity == SeverityLow {
			level = slog.LevelWarn
		}
		h.log.LogAttrs(ctx, level, "application error", attrs...)
		h.report(appErr.Code, appErr.Severity)

		if h.sentryEnabled && (appErr.Severity == SeverityCritical || appErr.Severity == SeverityHigh) {
			h.sendToSentry(ctx, err)
		}

		userMessage := appErr.UserMessage
		if userMessage == "" {
			userMessage = defaultUserMessage
		}

		return userMessage, appErr.Retryable
	}

	attrs = append(attrs,
		slog.String("message", err.Error()),
		slog.String("severity", string(SeverityHigh)),
		slog.Bool("retryable", false),
	)

	h.log.LogAttrs(ctx, slog.LevelError, "unknown error", attrs...)
	h.report("unknown", SeverityHigh)

	if h.sentryEnabled {
		h.sendToSentry(ctx, err)
	}

	return defaultUserMessage, false
}

func (h *Handler) sendToSentry(ctx context.Context, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}

			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		if chatID, ok := logger.ChatIDFromContext(ctx); ok {
			scope.SetTag("chat_id", strconv.FormatInt(chatID, 10))
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}

		sentry.CaptureException(err)
	})
}

func contextAttrs(ctx context.Context) []slog.Attr {
	attrs := make([]slog.Attr, 0, 6)

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}
	if chatID, ok := logger.ChatIDFromContext(ctx); ok {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}

	return attrs
}
