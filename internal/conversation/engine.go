package conversation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
	"github.com/Proton-105/storefront-bot/internal/catalog"
	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/internal/i18n"
	"github.com/Proton-105/storefront-bot/internal/pricediff"
	"github.com/Proton-105/storefront-bot/internal/search"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/pkg/logger"
)

const defaultMaxMessageLength = 4096

var errNoSelectedProduct = errors.New("session has no selected product")

// Config holds the business settings of the conversation.
type Config struct {
	Categories        []string
	PaymentMethods    []string
	Shops             []string
	PageSize          int
	MaxMessageLength  int
	OrderTarget       Target
	PriceTarget       Target
	NotifySubscribers bool
}

// Deps bundles the collaborators of the Engine.
type Deps struct {
	Catalog       catalog.Source
	Machine       *state.Machine
	Detector      *pricediff.Detector
	Broadcaster   Broadcaster
	Exporter      Exporter
	Subscriptions Subscriptions
	Errors        *apperrors.Handler
	Translator    i18n.Translator
	Log           *slog.Logger
}

// Engine consumes chat events and produces outbound intents. It never returns
// an error to its caller; failures become user-facing messages.
type Engine struct {
	cfg         Config
	catalog     catalog.Source
	machine     *state.Machine
	detector    *pricediff.Detector
	broadcaster Broadcaster
	exporter    Exporter
	subs        Subscriptions
	errors      *apperrors.Handler
	t           i18n.Translator
	log         *slog.Logger
	paginator   search.Paginator
}

// New wires an Engine.
func New(cfg Config, deps Deps) *Engine {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = defaultMaxMessageLength
	}

	t := deps.Translator
	if t == nil {
		t = i18n.MustDefault()
	}

	errHandler := deps.Errors
	if errHandler == nil {
		errHandler = apperrors.NewHandler(log, false, nil)
	}

	detector := deps.Detector
	if detector == nil {
		detector = pricediff.NewDetector()
	}

	return &Engine{
		cfg:         cfg,
		catalog:     deps.Catalog,
		machine:     deps.Machine,
		detector:    detector,
		broadcaster: deps.Broadcaster,
		exporter:    deps.Exporter,
		subs:        deps.Subscriptions,
		errors:      errHandler,
		t:           t,
		log:         log.With(slog.String("component", "conversation")),
		paginator:   search.NewPaginator(cfg.PageSize),
	}
}

// HandleText processes a free-text message.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string) []Intent {
	ctx = logger.WithChatID(ctx, chatID)

	unlock := e.machine.Lock(chatID)
	defer unlock()

	session, err := e.machine.Load(ctx, chatID)
	if err != nil {
		return e.loadFailed(ctx, chatID, session, err)
	}

	if session == nil {
		return e.handleIdleText(ctx, chatID, strings.TrimSpace(text))
	}

	return e.handleSessionText(ctx, session, text)
}

// HandleCommand processes a slash command such as /start.
func (e *Engine) HandleCommand(ctx context.Context, chatID int64, command string) []Intent {
	ctx = logger.WithChatID(ctx, chatID)

	switch normalizeCommand(command) {
	case "start":
		if intents := e.discardSession(ctx, chatID); intents != nil {
			return intents
		}
		return []Intent{{
			Kind:   KindSend,
			ChatID: chatID,
			Text:   e.t.T("start.welcome"),
			Reply:  keyboard.MainMenu(e.t, e.cfg.Categories),
		}}
	case "subscribe":
		e.subs.Subscribe(chatID)
		return []Intent{sendText(chatID, e.t.T("subscription.subscribed"))}
	case "unsubscribe":
		e.subs.Unsubscribe(chatID)
		return []Intent{sendText(chatID, e.t.T("subscription.unsubscribed"))}
	case "cancel":
		unlock := e.machine.Lock(chatID)
		defer unlock()

		session, err := e.machine.Load(ctx, chatID)
		if session == nil && err == nil {
			return []Intent{sendText(chatID, e.t.T("common.nothing_to_cancel"))}
		}
		if err != nil && !errors.Is(err, state.ErrCorruptedSession) {
			return e.fail(ctx, chatID, err, "common.error")
		}
		if err := e.machine.Reset(ctx, chatID, stateOf(session)); err != nil {
			return e.fail(ctx, chatID, err, "common.error")
		}
		return []Intent{sendText(chatID, e.t.T("common.cancelled"))}
	default:
		return []Intent{sendText(chatID, e.t.T("common.choose_from_list"))}
	}
}

// discardSession drops any session so /start always leads to the menu.
func (e *Engine) discardSession(ctx context.Context, chatID int64) []Intent {
	unlock := e.machine.Lock(chatID)
	defer unlock()

	session, err := e.machine.Load(ctx, chatID)
	if err != nil && !errors.Is(err, state.ErrCorruptedSession) {
		return e.fail(ctx, chatID, err, "common.error")
	}
	if session == nil && err == nil {
		return nil
	}

	if err := e.machine.Reset(ctx, chatID, stateOf(session)); err != nil {
		return e.fail(ctx, chatID, err, "common.error")
	}
	return nil
}

func stateOf(session *state.Session) state.State {
	if session == nil {
		return state.StateIdle
	}
	return session.State
}

func normalizeCommand(command string) string {
	command = strings.TrimPrefix(strings.TrimSpace(command), "/")
	if idx := strings.IndexAny(command, "@ "); idx >= 0 {
		command = command[:idx]
	}
	return strings.ToLower(command)
}

func (e *Engine) handleIdleText(ctx context.Context, chatID int64, text string) []Intent {
	switch text {
	case e.t.T("menu.order"):
		return e.begin(ctx, chatID, state.StateSearchingProductForOrder, "search.prompt_order")
	case e.t.T("menu.search"):
		return e.begin(ctx, chatID, state.StateSearchingProduct, "search.prompt")
	case e.t.T("menu.markup"):
		return e.begin(ctx, chatID, state.StateEnteringMarkupProductName, "search.prompt_markup")
	case e.t.T("menu.price_changes"):
		return e.checkPrices(ctx, chatID)
	case e.t.T("menu.export"):
		return e.exportCatalog(ctx, chatID)
	}

	if slices.Contains(e.cfg.Categories, text) {
		return e.listCategory(ctx, chatID, text)
	}

	return []Intent{sendText(chatID, e.t.T("common.choose_from_list"))}
}

func (e *Engine) begin(ctx context.Context, chatID int64, to state.State, promptKey string) []Intent {
	session := &state.Session{ChatID: chatID, State: state.StateIdle}
	if err := e.machine.Transition(ctx, session, to); err != nil {
		return e.fail(ctx, chatID, err, "common.error")
	}
	return []Intent{sendText(chatID, e.t.T(promptKey))}
}

func (e *Engine) handleSessionText(ctx context.Context, session *state.Session, text string) []Intent {
	switch session.State {
	case state.StateSearchingProductForOrder:
		return e.startSelection(ctx, session, text, state.StateSelectingProductForOrder, ActionSelectOrder, ActionOrderPage)
	case state.StateEnteringMarkupProductName:
		return e.startSelection(ctx, session, text, state.StateSelectingProductForMarkup, ActionSelectMarkup, ActionMarkupPage)
	case state.StateSearchingProduct:
		return e.flatSearch(ctx, session, text)
	case state.StateEnteringFio:
		return e.enterFio(ctx, session, text)
	case state.StateEnteringComment:
		return e.submitOrder(ctx, session, text)
	case state.StateEnteringMarkupPercentage:
		return e.applyMarkup(ctx, session, text)
	case state.StateSelectingProductForOrder,
		state.StateSelectingPayment,
		state.StateSelectingShop,
		state.StateSelectingProductForMarkup:
		return e.unexpectedInput(ctx, session)
	default:
		return e.loadFailed(ctx, session.ChatID, session, state.ErrCorruptedSession)
	}
}

// unexpectedInput resets a session that received text it cannot consume.
func (e *Engine) unexpectedInput(ctx context.Context, session *state.Session) []Intent {
	e.log.InfoContext(ctx, "unexpected text for state", slog.String("state", string(session.State)))
	e.finish(ctx, session)
	return []Intent{sendText(session.ChatID, e.t.T("common.error"))}
}

// loadFailed handles a session that could not be read. Corrupted sessions are
// discarded; other storage failures leave the store untouched.
func (e *Engine) loadFailed(ctx context.Context, chatID int64, session *state.Session, err error) []Intent {
	if !errors.Is(err, state.ErrCorruptedSession) {
		return e.fail(ctx, chatID, apperrors.NewDatabaseError(err), "common.error")
	}

	from := stateOf(session)
	e.errors.Handle(ctx, apperrors.NewCorruptedSessionError(chatID, string(from)))

	if resetErr := e.machine.Reset(ctx, chatID, from); resetErr != nil {
		e.errors.Handle(ctx, apperrors.NewDatabaseError(resetErr))
	}
	return []Intent{sendText(chatID, e.t.T("common.error"))}
}

// fail reports err and answers with the text under key.
func (e *Engine) fail(ctx context.Context, chatID int64, err error, key string) []Intent {
	e.errors.Handle(ctx, err)
	return []Intent{sendText(chatID, e.t.T(key))}
}

// finish returns the chat to Idle. Failures are reported but do not change
// what the user sees.
func (e *Engine) finish(ctx context.Context, session *state.Session) {
	if err := e.machine.Transition(ctx, session, state.StateIdle); err != nil {
		e.errors.Handle(ctx, apperrors.NewDatabaseError(err))
	}
}

// fetch loads the catalog, reporting failures.
func (e *Engine) fetch(ctx context.Context) (*catalog.Snapshot, error) {
	snapshot, err := e.catalog.FetchSnapshot(ctx)
	if err != nil {
		e.errors.Handle(ctx, err)
		return nil, err
	}
	return snapshot, nil
}
