// Package subscription keeps the chats that asked for price change notifications.
package subscription

import (
	"slices"

	set "github.com/deckarep/golang-set/v2"
)

// Registry is a thread-safe set of subscribed chat IDs.
type Registry struct {
	chats set.Set[int64]
}

// NewRegistry returns a registry seeded with initial subscribers.
func NewRegistry(initial ...int64) *Registry {
	return &Registry{chats: set.NewSet[int64](initial...)}
}

// Subscribe adds chatID and reports whether it was newly added.
func (r *Registry) Subscribe(chatID int64) bool {
	return r.chats.Add(chatID)
}

// Unsubscribe removes chatID and reports whether it was subscribed.
func (r *Registry) Unsubscribe(chatID int64) bool {
	if !r.chats.Contains(chatID) {
		return false
	}
	r.chats.Remove(chatID)
	return true
}

// Contains reports whether chatID is subscribed.
func (r *Registry) Contains(chatID int64) bool {
	return r.chats.Contains(chatID)
}

// List returns the subscribers in ascending order.
func (r *Registry) List() []int64 {
	chats := r.chats.ToSlice()
	slices.Sort(chats)
	return chats
}

// Len returns the number of subscribers.
func (r *Registry) Len() int {
	return r.chats.Cardinality()
}
