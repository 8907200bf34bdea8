package conversation

import (
	"context"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

// Target addresses a channel and, optionally, a forum thread within it.
type Target struct {
	ChatID   int64
	ThreadID int
}

// Broadcaster publishes messages outside the originating chat.
type Broadcaster interface {
	Post(ctx context.Context, target Target, text string, markdown bool) error
}

// Exporter renders the catalog as a spreadsheet document.
type Exporter interface {
	Render(snapshot *catalog.Snapshot) ([]byte, error)
}

// Subscriptions tracks chats that receive price change notifications.
type Subscriptions interface {
	Subscribe(chatID int64) bool
	Unsubscribe(chatID int64) bool
	List() []int64
}
