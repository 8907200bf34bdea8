package conversation

import (
	"context"
	"errors"

	"github.com/Proton-105/storefront-bot/internal/i18n"
	"github.com/Proton-105/storefront-bot/internal/markup"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/pkg/money"
)

// applyMarkup computes the marked-up price. Invalid input re-prompts and keeps
// the session.
func (e *Engine) applyMarkup(ctx context.Context, session *state.Session, text string) []Intent {
	if session.SelectedProduct == nil {
		return e.loadFailed(ctx, session.ChatID, session, errors.Join(state.ErrCorruptedSession, errNoSelectedProduct))
	}

	percent, err := markup.ParsePercent(text)
	if err != nil {
		return []Intent{sendText(session.ChatID, e.t.T("markup.invalid"))}
	}

	product := *session.SelectedProduct
	price, err := markup.Apply(product.Price, percent)
	if err != nil {
		return []Intent{sendText(session.ChatID, e.t.T("markup.invalid"))}
	}

	e.finish(ctx, session)

	result := i18n.Tf(e.t, "markup.result",
		product.Name,
		money.String(product.Price),
		percent.String(),
		money.String(price),
	)

	chunks := splitText(result, e.cfg.MaxMessageLength)
	intents := make([]Intent, 0, len(chunks))
	for _, chunk := range chunks {
		intents = append(intents, sendText(session.ChatID, chunk))
	}
	return intents
}
