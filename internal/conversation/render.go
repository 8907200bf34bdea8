package conversation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/catalog"
	"github.com/Proton-105/storefront-bot/internal/i18n"
	"github.com/Proton-105/storefront-bot/internal/pricediff"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/pkg/money"
)

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escapeMarkdown protects catalog text inside legacy Markdown messages.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// productPage renders the current page of session results: one button per
// item and a navigation row when there is more than one page.
func (e *Engine) productPage(session *state.Session, selectAction, pageAction string) (string, *keyboard.Inline, error) {
	total := e.paginator.TotalPages(len(session.SearchResults))
	page := session.CurrentPage

	builder := keyboard.NewInlineKeyboard()
	for _, item := range e.paginator.Page(session.SearchResults, page) {
		builder.AddRow(keyboard.InlineButton{
			Text:   item.Name,
			Unique: selectAction,
			Data:   strconv.FormatInt(item.ID, 10),
		})
	}
	builder.AddRow(keyboard.PaginationButtons(e.t, pageAction, page, total)...)

	kb, err := builder.Build()
	if err != nil {
		return "", nil, err
	}

	return i18n.Tf(e.t, "search.page", page+1, total), kb, nil
}

func (e *Engine) renderSearchResults(items []catalog.Item) string {
	var b strings.Builder
	b.WriteString(e.t.T("search.results_header"))

	for i, item := range items {
		b.WriteString("\n\n")
		b.WriteString(i18n.Tf(e.t, "search.result_item",
			i+1,
			escapeMarkdown(item.Name),
			escapeMarkdown(item.Category),
			money.String(item.Price),
		))
	}

	return b.String()
}

func (e *Engine) renderCategory(category string, items []catalog.Item) string {
	brands := lo.Uniq(lo.Map(items, func(item catalog.Item, _ int) string { return item.Brand }))
	byBrand := lo.GroupBy(items, func(item catalog.Item) string { return item.Brand })

	var b strings.Builder
	b.WriteString("*" + escapeMarkdown(category) + "*:\n")

	for _, brand := range brands {
		b.WriteString("_" + escapeMarkdown(brand) + "_\n")
		for _, item := range byBrand[brand] {
			b.WriteString(i18n.Tf(e.t, "category.item", escapeMarkdown(item.Name), money.String(item.Price)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (e *Engine) renderChanges(changes []pricediff.Change) string {
	var b strings.Builder
	b.WriteString(e.t.T("prices.header"))

	for _, change := range changes {
		b.WriteString("\n\n")
		b.WriteString(i18n.Tf(e.t, "prices.item",
			escapeMarkdown(change.Name),
			money.String(change.PreviousPrice),
			money.String(change.NewPrice),
		))
	}

	return b.String()
}

func (e *Engine) sendMarkdown(chatID int64, text string) []Intent {
	chunks := splitText(text, e.cfg.MaxMessageLength)

	intents := make([]Intent, 0, len(chunks))
	for _, chunk := range chunks {
		intents = append(intents, Intent{Kind: KindSend, ChatID: chatID, Text: chunk, Markdown: true})
	}
	return intents
}

// splitText cuts text into chunks of at most limit runes, preferring to break
// at the last newline inside each window.
func splitText(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		window := runes[:limit]
		cut := lastIndex(window, '\n')

		if cut <= 0 {
			chunks = append(chunks, string(window))
			runes = runes[limit:]
			continue
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut+1:]
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastIndex(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
