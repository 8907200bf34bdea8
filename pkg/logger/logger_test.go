package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.With(slog.String("bot_token", "123:abc")).Info("order received",
		slog.String("fio", "Иванов Иван"),
		slog.Group("db", slog.String("password", "secret")),
		slog.Int64("chat_id", 42),
	)

	out := buf.String()
	assert.NotContains(t, out, "123:abc")
	assert.NotContains(t, out, "Иванов")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "chat_id=42")
	assert.Contains(t, out, "fio=***(11)")
	assert.Contains(t, out, "bot_token=***")
}

func TestTeeHandler_WritesToAll(t *testing.T) {
	var info, errs bytes.Buffer
	tee := NewTeeHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
		nil,
	)
	log := slog.New(tee)

	log.Info("hello")
	log.Error("boom")

	assert.Contains(t, info.String(), "hello")
	assert.Contains(t, info.String(), "boom")
	assert.NotContains(t, errs.String(), "hello")
	assert.Contains(t, errs.String(), "boom")
	assert.False(t, tee.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestContextIdentifiers(t *testing.T) {
	ctx := WithCorrelationID(context.Background())
	id := CorrelationIDFromContext(ctx)
	require.NotEmpty(t, id)
	assert.Equal(t, id, CorrelationIDFromContext(WithCorrelationID(ctx)))

	_, ok := ChatIDFromContext(ctx)
	assert.False(t, ok)

	chatID, ok := ChatIDFromContext(WithChatID(ctx, 7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), chatID)
}
