package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/i18n"
)

func TestMainMenu(t *testing.T) {
	categories := []string{"Часы", "Смартфоны", "Наушники", "Планшеты", "Ноутбуки"}

	menu := keyboard.MainMenu(i18n.MustDefault(), categories)
	assert.True(t, menu.Resize)

	expectedRows := [][]string{
		{"Составить заказ"},
		{"Часы", "Смартфоны", "Наушники"},
		{"Планшеты", "Ноутбуки"},
		{"📉 Изменение цен", "🔍 Найти товар"},
		{"📄 Выгрузить в Excel", "💼 Наценка на товар"},
	}
	assert.Equal(t, expectedRows, menu.Rows)

	markup := keyboard.ReplyMarkup(menu)
	require.Len(t, markup.ReplyKeyboard, len(expectedRows))
	assert.Equal(t, "Планшеты", markup.ReplyKeyboard[2][0].Text)
}
