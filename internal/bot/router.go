package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/bot/handlers"
)

// Router picks the handler for an update and runs it, wrapped in the
// middleware chain, on the chat's dispatcher worker.
type Router struct {
	mu          sync.RWMutex
	text        handlers.Handler
	command     handlers.Handler
	callback    handlers.Handler
	middlewares []handlers.Middleware
	dispatcher  *Dispatcher
	log         *slog.Logger
}

// NewRouter builds a Router with no handlers.
func NewRouter(dispatcher *Dispatcher, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		dispatcher:  dispatcher,
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// HandleText sets the handler for plain messages.
func (r *Router) HandleText(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = h
}

// HandleCommand sets the handler for messages starting with a slash.
func (r *Router) HandleCommand(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.command = h
}

// HandleCallback sets the handler for inline button presses.
func (r *Router) HandleCallback(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callback = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route queues the update on its chat's worker. It returns once the update is
// queued, not when it has been handled.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	chat := c.Chat()
	if chat == nil {
		r.log.Warn("dropping update without chat", slog.Int("update_id", c.Update().ID))
		return nil
	}

	handler := r.applyMiddlewares(r.resolve(c))
	if handler == nil {
		r.log.Debug("no handler for update", slog.Int64("chat_id", chat.ID))
		return nil
	}

	if r.dispatcher == nil {
		return handler(c)
	}

	return r.dispatcher.Submit(context.Background(), chat.ID, func(context.Context) {
		_ = handler(c)
	})
}

func (r *Router) resolve(c telebot.Context) handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c.Callback() != nil {
		return r.callback
	}
	if strings.HasPrefix(strings.TrimSpace(c.Text()), "/") {
		return r.command
	}
	return r.text
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
