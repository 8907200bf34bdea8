// Package conversation implements the chat state machine behind the storefront bot.
package conversation

import (
	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
)

// Kind tells the transport what to do with an Intent.
type Kind int

const (
	// KindSend posts a new message to the chat.
	KindSend Kind = iota + 1
	// KindEdit replaces the message that carried the callback.
	KindEdit
	// KindDocument uploads an attachment.
	KindDocument
	// KindAck answers the callback query.
	KindAck
)

func (k Kind) String() string {
	switch k {
	case KindSend:
		return "send"
	case KindEdit:
		return "edit"
	case KindDocument:
		return "document"
	case KindAck:
		return "ack"
	default:
		return "unknown"
	}
}

// Document is an opaque attachment.
type Document struct {
	FileName string
	Caption  string
	Data     []byte
}

// Intent is an outbound action for the transport to perform.
type Intent struct {
	Kind     Kind
	ChatID   int64
	Text     string
	Markdown bool
	Inline   *keyboard.Inline
	Reply    *keyboard.Reply
	Document *Document
	// Toast is the optional notification shown when acknowledging a callback.
	Toast string
}

func sendText(chatID int64, text string) Intent {
	return Intent{Kind: KindSend, ChatID: chatID, Text: text}
}

func sendInline(chatID int64, text string, kb *keyboard.Inline) Intent {
	return Intent{Kind: KindSend, ChatID: chatID, Text: text, Inline: kb}
}

func editInline(chatID int64, text string, kb *keyboard.Inline) Intent {
	return Intent{Kind: KindEdit, ChatID: chatID, Text: text, Inline: kb}
}

func ack(chatID int64, toast string) Intent {
	return Intent{Kind: KindAck, ChatID: chatID, Toast: toast}
}
