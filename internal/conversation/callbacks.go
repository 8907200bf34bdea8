package conversation

import (
	"context"
	"log/slog"
	"slices"

	"github.com/spf13/cast"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/pkg/logger"
)

// Callback actions. Payloads are `<action>_<argument>`.
const (
	ActionOrderPage    = "order_search_page"
	ActionMarkupPage   = "markup_search_page"
	ActionSelectOrder  = "select_product_for_order"
	ActionSelectMarkup = "select_product_for_markup"
	ActionPayment      = "payment"
	ActionShop         = "shop"
)

var callbackActions = []string{
	ActionOrderPage,
	ActionMarkupPage,
	ActionSelectOrder,
	ActionSelectMarkup,
	ActionPayment,
	ActionShop,
}

// expectedState maps every action to the only state that may consume it.
var expectedState = map[string]state.State{
	ActionOrderPage:    state.StateSelectingProductForOrder,
	ActionMarkupPage:   state.StateSelectingProductForMarkup,
	ActionSelectOrder:  state.StateSelectingProductForOrder,
	ActionSelectMarkup: state.StateSelectingProductForMarkup,
	ActionPayment:      state.StateSelectingPayment,
	ActionShop:         state.StateSelectingShop,
}

// HandleCallback processes a button press. The result always contains exactly
// one acknowledgement, placed first.
func (e *Engine) HandleCallback(ctx context.Context, chatID int64, data string) []Intent {
	ctx = logger.WithChatID(ctx, chatID)

	action, arg, err := keyboard.DecodeCallback(data, callbackActions...)
	if err != nil {
		e.log.DebugContext(ctx, "unrecognized callback", slog.String("data", data), slog.Any("error", err))
		return []Intent{ack(chatID, "")}
	}

	unlock := e.machine.Lock(chatID)
	defer unlock()

	session, err := e.machine.Load(ctx, chatID)
	if err != nil {
		return append([]Intent{ack(chatID, "")}, e.loadFailed(ctx, chatID, session, err)...)
	}

	if session == nil || session.State != expectedState[action] {
		return []Intent{e.stale(ctx, chatID, action)}
	}

	var (
		intents []Intent
		ok      bool
	)

	switch action {
	case ActionOrderPage:
		intents, ok = e.turnPage(ctx, session, arg, ActionSelectOrder, ActionOrderPage)
	case ActionMarkupPage:
		intents, ok = e.turnPage(ctx, session, arg, ActionSelectMarkup, ActionMarkupPage)
	case ActionSelectOrder:
		intents, ok = e.selectOrderProduct(ctx, session, arg)
	case ActionSelectMarkup:
		intents, ok = e.selectMarkupProduct(ctx, session, arg)
	case ActionPayment:
		intents, ok = e.selectPayment(ctx, session, arg)
	case ActionShop:
		intents, ok = e.selectShop(ctx, session, arg)
	}

	if !ok {
		return []Intent{e.stale(ctx, chatID, action)}
	}

	return append([]Intent{ack(chatID, "")}, intents...)
}

// stale acknowledges a selection that no longer matches the session.
func (e *Engine) stale(ctx context.Context, chatID int64, action string) Intent {
	e.log.InfoContext(ctx, "stale callback ignored", slog.String("action", action))
	return ack(chatID, e.t.T("common.stale_selection"))
}

func (e *Engine) turnPage(ctx context.Context, session *state.Session, arg, selectAction, pageAction string) ([]Intent, bool) {
	page, err := cast.ToIntE(arg)
	if err != nil || !e.paginator.Valid(page, len(session.SearchResults)) {
		return nil, false
	}

	session.CurrentPage = page
	if err := e.machine.Save(ctx, session); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	text, kb, err := e.productPage(session, selectAction, pageAction)
	if err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	return []Intent{editInline(session.ChatID, text, kb)}, true
}

func (e *Engine) selectOrderProduct(ctx context.Context, session *state.Session, arg string) ([]Intent, bool) {
	if !e.pick(session, arg) {
		return nil, false
	}

	if err := e.machine.Transition(ctx, session, state.StateSelectingPayment); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	kb, err := choiceKeyboard(ActionPayment, e.cfg.PaymentMethods)
	if err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	return []Intent{sendInline(session.ChatID, e.t.T("order.choose_payment"), kb)}, true
}

func (e *Engine) selectMarkupProduct(ctx context.Context, session *state.Session, arg string) ([]Intent, bool) {
	if !e.pick(session, arg) {
		return nil, false
	}

	if err := e.machine.Transition(ctx, session, state.StateEnteringMarkupPercentage); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	return []Intent{sendText(session.ChatID, e.t.T("markup.enter_percent"))}, true
}

// pick resolves the selected id within the stored results and drops the
// result list, so buttons of the old page go stale.
func (e *Engine) pick(session *state.Session, arg string) bool {
	id, err := cast.ToInt64E(arg)
	if err != nil {
		return false
	}

	item, ok := session.FindResult(id)
	if !ok {
		return false
	}

	session.SelectedProduct = &item
	session.SearchResults = nil
	session.CurrentPage = 0
	return true
}

func (e *Engine) selectPayment(ctx context.Context, session *state.Session, method string) ([]Intent, bool) {
	if !slices.Contains(e.cfg.PaymentMethods, method) {
		return nil, false
	}

	session.PaymentMethod = method
	if err := e.machine.Transition(ctx, session, state.StateEnteringFio); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	return []Intent{sendText(session.ChatID, e.t.T("order.enter_fio"))}, true
}

func (e *Engine) selectShop(ctx context.Context, session *state.Session, shop string) ([]Intent, bool) {
	if !slices.Contains(e.cfg.Shops, shop) {
		return nil, false
	}

	session.Shop = shop
	if err := e.machine.Transition(ctx, session, state.StateEnteringComment); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error"), true
	}

	return []Intent{sendText(session.ChatID, e.t.T("order.enter_comment"))}, true
}

func choiceKeyboard(action string, values []string) (*keyboard.Inline, error) {
	row := make([]keyboard.InlineButton, 0, len(values))
	for _, value := range values {
		row = append(row, keyboard.InlineButton{Text: value, Unique: action, Data: value})
	}
	return keyboard.NewInlineKeyboard().AddRow(row...).Build()
}
