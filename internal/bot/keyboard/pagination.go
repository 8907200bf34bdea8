package keyboard

import (
	"strconv"
	"strings"

	"github.com/Proton-105/storefront-bot/internal/i18n"
)

// PaginationButtons returns the prev/next controls for a zero-based page.
// Prev is present only when page > 0 and next only when page < totalPages-1.
func PaginationButtons(t i18n.Translator, action string, page, totalPages int) []InlineButton {
	buttons := make([]InlineButton, 0, 2)

	if page > 0 {
		buttons = append(buttons, InlineButton{
			Text:   translated(t, "menu.prev", "⬅️ Назад"),
			Unique: action,
			Data:   strconv.Itoa(page - 1),
		})
	}

	if page < totalPages-1 {
		buttons = append(buttons, InlineButton{
			Text:   translated(t, "menu.next", "➡️ Вперед"),
			Unique: action,
			Data:   strconv.Itoa(page + 1),
		})
	}

	return buttons
}

func translated(t i18n.Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}

	text := strings.TrimSpace(t.T(key))
	if text == "" || text == key {
		return fallback
	}

	return text
}
