package keyboard

import (
	"github.com/Proton-105/storefront-bot/internal/i18n"
)

const categoriesPerRow = 3

// Reply is a transport-neutral reply keyboard.
type Reply struct {
	Rows   [][]string
	Resize bool
}

// MainMenu builds the persistent menu: the order trigger, categories in rows
// of three, then the function buttons.
func MainMenu(t i18n.Translator, categories []string) *Reply {
	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	rows := [][]string{{lookup("menu.order")}}
	for start := 0; start < len(categories); start += categoriesPerRow {
		end := min(start+categoriesPerRow, len(categories))
		rows = append(rows, append([]string(nil), categories[start:end]...))
	}
	rows = append(rows,
		[]string{lookup("menu.price_changes"), lookup("menu.search")},
		[]string{lookup("menu.export"), lookup("menu.markup")},
	)

	return &Reply{Rows: rows, Resize: true}
}
