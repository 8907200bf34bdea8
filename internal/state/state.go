package state

import (
	"slices"
	"time"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

// State represents a conversation state.
type State string

const (
	// StateIdle means no session is stored for the chat. It is never persisted.
	StateIdle State = "idle"

	StateSearchingProductForOrder  State = "searching_product_for_order"
	StateSelectingProductForOrder  State = "selecting_product_for_order"
	StateSelectingPayment          State = "selecting_payment"
	StateEnteringFio               State = "entering_fio"
	StateSelectingShop             State = "selecting_shop"
	StateEnteringComment           State = "entering_comment"
	StateSearchingProduct          State = "searching_product"
	StateEnteringMarkupProductName State = "entering_markup_product_name"
	StateSelectingProductForMarkup State = "selecting_product_for_markup"
	StateEnteringMarkupPercentage  State = "entering_markup_percentage"
)

// States lists every known state, Idle first.
var States = []State{
	StateIdle,
	StateSearchingProductForOrder,
	StateSelectingProductForOrder,
	StateSelectingPayment,
	StateEnteringFio,
	StateSelectingShop,
	StateEnteringComment,
	StateSearchingProduct,
	StateEnteringMarkupProductName,
	StateSelectingProductForMarkup,
	StateEnteringMarkupPercentage,
}

// Valid reports whether s belongs to the closed set of states.
func (s State) Valid() bool {
	return slices.Contains(States, s)
}

// Session is the per-chat progress record driving the conversation.
type Session struct {
	ChatID          int64          `json:"chat_id"`
	State           State          `json:"state"`
	SelectedProduct *catalog.Item  `json:"selected_product,omitempty"`
	SearchResults   []catalog.Item `json:"search_results,omitempty"`
	CurrentPage     int            `json:"current_page"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	FIO             string         `json:"fio,omitempty"`
	Shop            string         `json:"shop,omitempty"`
	Comment         string         `json:"comment,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so stored sessions never alias caller memory.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := *s
	if s.SelectedProduct != nil {
		item := *s.SelectedProduct
		out.SelectedProduct = &item
	}
	out.SearchResults = slices.Clone(s.SearchResults)
	return &out
}

// FindResult returns the search result with the given id.
func (s *Session) FindResult(id int64) (catalog.Item, bool) {
	if s == nil {
		return catalog.Item{}, false
	}

	idx := slices.IndexFunc(s.SearchResults, func(item catalog.Item) bool {
		return item.ID == id
	})
	if idx < 0 {
		return catalog.Item{}, false
	}
	return s.SearchResults[idx], true
}
