package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// secretFragments mark credentials; any key containing one is hidden fully.
var secretFragments = []string{"password", "token", "secret", "api_key", "authorization", "dsn"}

// personalKeys carry customer data from orders. Only the length survives so
// that truncated input can still be diagnosed.
var personalKeys = map[string]bool{
	"fio":     true,
	"comment": true,
	"phone":   true,
}

// MaskingHandler wraps a slog.Handler and masks sensitive attributes before delegating.
type MaskingHandler struct {
	next slog.Handler
}

// NewMaskingHandler creates a handler that masks sensitive fields before passing records downstream.
func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

// Enabled reports whether the handler handles records at the given level.
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// WithAttrs returns a new handler with additional attributes, masked as well.
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = maskAttr(attr)
	}
	return &MaskingHandler{next: h.next.WithAttrs(masked)}
}

// WithGroup returns a new handler with an appended group name.
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

// Handle applies masking to sensitive attributes and delegates to the wrapped handler.
func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr))
		return true
	})

	return h.next.Handle(ctx, masked)
}

func maskAttr(attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)

	switch {
	case isSecretKey(key):
		return slog.String(attr.Key, "***")
	case personalKeys[key]:
		return slog.String(attr.Key, fmt.Sprintf("***(%d)", utf8.RuneCountInString(attr.Value.String())))
	case attr.Value.Kind() == slog.KindGroup:
		group := attr.Value.Group()
		masked := make([]any, len(group))
		for i, child := range group {
			masked[i] = maskAttr(child)
		}
		return slog.Group(attr.Key, masked...)
	}
	return attr
}

func isSecretKey(key string) bool {
	for _, fragment := range secretFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
