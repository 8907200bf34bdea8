// Package bot connects the conversation engine to the Telegram Bot API.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/storefront-bot/internal/bot/handlers"
	errors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/internal/middleware"
	"github.com/Proton-105/storefront-bot/pkg/config"
)

// Bot wraps telebot.Bot with the router, dispatcher and transport.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	router     *Router
	dispatcher *Dispatcher
	transport  *Transport
}

// New builds a telegram bot instance configured according to the application settings.
// Updates are read one at a time and handed to the dispatcher, which keeps
// per-chat order.
func New(cfg config.BotConfig, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:       cfg.Token,
		Synchronous: true,
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Any("error", err))
		},
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout:        cfg.Timeout,
			AllowedUpdates: []string{"message", "callback_query"},
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	dispatcher := NewDispatcher(DispatcherOptions{Workers: cfg.Workers, QueueSize: cfg.QueueSize}, log)

	return &Bot{
		telebot:    tb,
		log:        log,
		router:     NewRouter(dispatcher, log),
		dispatcher: dispatcher,
		transport:  NewTransport(tb, log),
	}, nil
}

// Transport delivers intents and channel posts through this bot.
func (b *Bot) Transport() *Transport {
	return b.transport
}

// Mount routes every update to engine. fallback is sent when a handler panics.
func (b *Bot) Mount(engine handlers.Engine, errHandler *errors.Handler, fallback string) {
	b.router.Use(RecoveryMiddleware(b.log, errHandler, fallback))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(ErrorHandlingMiddleware(errHandler))
	b.router.Use(middleware.Metrics)

	b.router.HandleText(handlers.NewTextHandler(engine, b.transport))
	b.router.HandleCommand(handlers.NewCommandHandler(engine, b.transport))
	b.router.HandleCallback(handlers.NewCallbackHandler(engine, b.transport))

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)

	if err := b.telebot.SetCommands(Commands()); err != nil {
		b.log.Warn("failed to publish bot commands", slog.Any("error", err))
	}
}

// Start runs the telegram bot event loop. It blocks until Stop.
func (b *Bot) Start() {
	b.log.Info("telegram bot started", slog.String("username", b.username()))
	b.telebot.Start()
}

// Stop stops polling and waits for queued updates to be handled.
func (b *Bot) Stop() {
	b.log.Info("stopping telegram bot...")

	b.telebot.Stop()
	b.dispatcher.Close()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) username() string {
	if b.telebot.Me == nil {
		return ""
	}
	return b.telebot.Me.Username
}
