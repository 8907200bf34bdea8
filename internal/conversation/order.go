package conversation

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/internal/i18n"
	"github.com/Proton-105/storefront-bot/internal/search"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/pkg/metrics"
	"github.com/Proton-105/storefront-bot/pkg/money"
)

// startSelection runs a search and shows the first page of selectable results.
func (e *Engine) startSelection(ctx context.Context, session *state.Session, query string, next state.State, selectAction, pageAction string) []Intent {
	snapshot, err := e.fetch(ctx)
	if err != nil {
		return []Intent{sendText(session.ChatID, e.t.T("common.catalog_unavailable"))}
	}

	result, err := e.paginator.Search(snapshot, query)
	if errors.Is(err, search.ErrNotFound) {
		e.finish(ctx, session)
		return []Intent{sendText(session.ChatID, i18n.Tf(e.t, "search.not_found", result.Query))}
	}

	session.SearchResults = result.Items
	session.CurrentPage = 0
	if err := e.machine.Transition(ctx, session, next); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error")
	}

	text, kb, err := e.productPage(session, selectAction, pageAction)
	if err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error")
	}

	return []Intent{sendInline(session.ChatID, text, kb)}
}

// flatSearch answers with every match as a numbered list and ends the session.
func (e *Engine) flatSearch(ctx context.Context, session *state.Session, query string) []Intent {
	snapshot, err := e.fetch(ctx)
	if err != nil {
		return []Intent{sendText(session.ChatID, e.t.T("common.catalog_unavailable"))}
	}

	e.finish(ctx, session)

	result, err := e.paginator.Search(snapshot, query)
	if errors.Is(err, search.ErrNotFound) {
		return []Intent{sendText(session.ChatID, i18n.Tf(e.t, "search.not_found", result.Query))}
	}

	return e.sendMarkdown(session.ChatID, e.renderSearchResults(result.Items))
}

func (e *Engine) enterFio(ctx context.Context, session *state.Session, text string) []Intent {
	fio := strings.TrimSpace(text)
	if fio == "" {
		return e.unexpectedInput(ctx, session)
	}

	session.FIO = fio
	if err := e.machine.Transition(ctx, session, state.StateSelectingShop); err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error")
	}

	kb, err := choiceKeyboard(ActionShop, e.cfg.Shops)
	if err != nil {
		return e.fail(ctx, session.ChatID, err, "common.error")
	}

	return []Intent{sendInline(session.ChatID, e.t.T("order.choose_shop"), kb)}
}

// submitOrder forwards the completed order to the order channel. The session
// ends whether or not the broadcast succeeds.
func (e *Engine) submitOrder(ctx context.Context, session *state.Session, text string) []Intent {
	if session.SelectedProduct == nil {
		return e.loadFailed(ctx, session.ChatID, session, errors.Join(state.ErrCorruptedSession, errNoSelectedProduct))
	}

	session.Comment = strings.TrimSpace(text)
	order := i18n.Tf(e.t, "order.message",
		session.SelectedProduct.Name,
		money.String(session.SelectedProduct.Price),
		session.PaymentMethod,
		session.FIO,
		session.Shop,
		session.Comment,
	)

	err := e.broadcaster.Post(ctx, e.cfg.OrderTarget, order, false)
	e.finish(ctx, session)

	if err != nil {
		metrics.RecordOrder("failed")
		return e.fail(ctx, session.ChatID, apperrors.NewBroadcastError(e.cfg.OrderTarget.ChatID, err), "order.failed")
	}

	metrics.RecordOrder("sent")
	return []Intent{sendText(session.ChatID, e.t.T("order.sent"))}
}

// listCategory renders the items of one category grouped by brand.
func (e *Engine) listCategory(ctx context.Context, chatID int64, category string) []Intent {
	snapshot, err := e.fetch(ctx)
	if err != nil {
		return []Intent{sendText(chatID, e.t.T("common.catalog_unavailable"))}
	}

	items := snapshot.Items(category)
	if len(items) == 0 {
		return []Intent{sendText(chatID, i18n.Tf(e.t, "category.empty", category))}
	}

	return e.sendMarkdown(chatID, e.renderCategory(category, items))
}

func (e *Engine) exportCatalog(ctx context.Context, chatID int64) []Intent {
	snapshot, err := e.fetch(ctx)
	if err != nil {
		return []Intent{sendText(chatID, e.t.T("export.failed"))}
	}

	data, err := e.exporter.Render(snapshot)
	if err != nil {
		return e.fail(ctx, chatID, apperrors.NewExportError(err), "export.failed")
	}

	return []Intent{{
		Kind:   KindDocument,
		ChatID: chatID,
		Document: &Document{
			FileName: e.t.T("export.filename"),
			Caption:  e.t.T("export.caption"),
			Data:     data,
		},
	}}
}
