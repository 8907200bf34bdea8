package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		built, err := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "Apple Watch", Unique: "select_product_for_order", Data: "1"}).
			AddRow().
			AddRow(
				keyboard.InlineButton{Text: "⬅️ Назад", Unique: "order_search_page", Data: "0"},
				keyboard.InlineButton{Text: "➡️ Вперед", Unique: "order_search_page", Data: "2"},
			).
			Build()
		require.NoError(t, err)

		require.Len(t, built.Rows, 2)
		assert.Equal(t, keyboard.Button{Text: "Apple Watch", Data: "select_product_for_order_1"}, built.Rows[0][0])
		assert.Equal(t, "order_search_page_2", built.Rows[1][1].Data)

		markup := keyboard.InlineMarkup(built)
		require.Len(t, markup.InlineKeyboard, 2)
		assert.Equal(t, "select_product_for_order_1", markup.InlineKeyboard[0][0].Data)
		assert.Empty(t, markup.InlineKeyboard[0][0].Unique)
	})

	t.Run("callback data overflow", func(t *testing.T) {
		_, err := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "Too big", Unique: "overflow", Data: strings.Repeat("x", keyboard.CallbackDataLimitBytes)}).
			Build()
		assert.Error(t, err)
	})
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, keyboard.Markup(nil, nil))

	reply := keyboard.Markup(nil, &keyboard.Reply{Rows: [][]string{{"a", "b"}, {"c"}}, Resize: true})
	require.NotNil(t, reply)
	assert.True(t, reply.ResizeKeyboard)
	require.Len(t, reply.ReplyKeyboard, 2)
	assert.Equal(t, "b", reply.ReplyKeyboard[0][1].Text)

	inline := keyboard.Markup(&keyboard.Inline{Rows: [][]keyboard.Button{{{Text: "x", Data: "shop_1"}}}}, &keyboard.Reply{})
	require.Len(t, inline.InlineKeyboard, 1)
	assert.Empty(t, inline.ReplyKeyboard)
}
