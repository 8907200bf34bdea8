package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// Markup converts the neutral layouts into telebot markup. Inline wins when
// both are set; nil is returned when neither is.
func Markup(inline *Inline, reply *Reply) *telebot.ReplyMarkup {
	switch {
	case inline != nil:
		return InlineMarkup(inline)
	case reply != nil:
		return ReplyMarkup(reply)
	default:
		return nil
	}
}

// InlineMarkup renders inline buttons with raw callback data. Unique is left
// empty so telebot delivers payloads untouched to OnCallback.
func InlineMarkup(keyboard *Inline) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{InlineKeyboard: make([][]telebot.InlineButton, len(keyboard.Rows))}
	for i, row := range keyboard.Rows {
		markup.InlineKeyboard[i] = make([]telebot.InlineButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = telebot.InlineButton{Text: btn.Text, Data: btn.Data}
		}
	}
	return markup
}

// ReplyMarkup renders a reply keyboard.
func ReplyMarkup(keyboard *Reply) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: keyboard.Resize}

	rows := make([]telebot.Row, 0, len(keyboard.Rows))
	for _, row := range keyboard.Rows {
		buttons := make([]telebot.Btn, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, markup.Text(text))
		}
		rows = append(rows, markup.Row(buttons...))
	}
	markup.Reply(rows...)

	return markup
}
