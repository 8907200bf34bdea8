package bot

import (
	telebot "gopkg.in/telebot.v3"
)

// Command constants for Telegram bot commands.
const (
	CommandStart       = "/start"
	CommandCancel      = "/cancel"
	CommandSubscribe   = "/subscribe"
	CommandUnsubscribe = "/unsubscribe"
)

// Commands lists the commands advertised in the Telegram menu.
func Commands() []telebot.Command {
	return []telebot.Command{
		{Text: CommandStart[1:], Description: "Главное меню"},
		{Text: CommandCancel[1:], Description: "Отменить текущее действие"},
		{Text: CommandSubscribe[1:], Description: "Подписаться на изменения цен"},
		{Text: CommandUnsubscribe[1:], Description: "Отписаться от изменений цен"},
	}
}
