package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"

	"github.com/Proton-105/storefront-bot/internal/bot"
	"github.com/Proton-105/storefront-bot/internal/catalog"
	"github.com/Proton-105/storefront-bot/internal/conversation"
	"github.com/Proton-105/storefront-bot/internal/database"
	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/internal/export"
	"github.com/Proton-105/storefront-bot/internal/health"
	"github.com/Proton-105/storefront-bot/internal/i18n"
	"github.com/Proton-105/storefront-bot/internal/jobs"
	jobhandlers "github.com/Proton-105/storefront-bot/internal/jobs/handlers"
	"github.com/Proton-105/storefront-bot/internal/lifecycle"
	"github.com/Proton-105/storefront-bot/internal/middleware"
	"github.com/Proton-105/storefront-bot/internal/state"
	"github.com/Proton-105/storefront-bot/internal/subscription"
	"github.com/Proton-105/storefront-bot/pkg/config"
	"github.com/Proton-105/storefront-bot/pkg/graceful"
	"github.com/Proton-105/storefront-bot/pkg/logger"
	"github.com/Proton-105/storefront-bot/pkg/metrics"
	rediscache "github.com/Proton-105/storefront-bot/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	defer func() { _ = logger.Close() }()

	config.Watch(v, log, func(updated *config.Config) {
		logger.SetLevel(updated.Logger.Level)
	})

	log.Info("starting storefront bot",
		slog.String("mode", cfg.Bot.Mode),
		slog.String("session_backend", cfg.Session.Backend),
		slog.Bool("jobs", cfg.Jobs.Enabled),
	)

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if cfg.Database.MigrateOnStart {
		if err := database.NewMigrator(db, log).Up(ctx); err != nil {
			return err
		}
	}

	repo := catalog.NewRepository(db, log)

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("catalog", repo)
	shutdown := lifecycle.NewShutdown(log)

	var redisClient *rediscache.MetricsClient
	if cfg.Redis.Enabled {
		client, err := rediscache.New(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		redisClient = rediscache.NewMetricsClient(client)
		checker.AddCheck("redis", redisClient)
	}

	storage, err := sessionStorage(cfg, redisClient, log)
	if err != nil {
		return err
	}
	machine := state.NewMachine(storage, log)

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled, func(code string, severity apperrors.Severity) {
		metrics.RecordError(code, string(severity))
	})

	tgBot, err := bot.New(cfg.Bot, log)
	if err != nil {
		return err
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(tgBot.Telebot()))

	translator := i18n.MustDefault()
	engine := conversation.New(conversation.Config{
		Categories:        cfg.Catalog.Categories,
		PaymentMethods:    cfg.Order.PaymentMethods,
		Shops:             cfg.Order.Shops,
		PageSize:          cfg.Catalog.PageSize,
		MaxMessageLength:  cfg.Messages.MaxLength,
		OrderTarget:       conversation.Target{ChatID: cfg.Order.ChannelID, ThreadID: cfg.Order.ThreadID},
		PriceTarget:       conversation.Target{ChatID: cfg.Prices.ChannelID, ThreadID: cfg.Prices.ThreadID},
		NotifySubscribers: cfg.Prices.NotifySubscribers,
	}, conversation.Deps{
		Catalog:       catalog.NewResilientSource(repo, catalogBreaker(log), log),
		Machine:       machine,
		Broadcaster:   tgBot.Transport(),
		Exporter:      export.NewSpreadsheet(),
		Subscriptions: subscription.NewRegistry(),
		Errors:        errHandler,
		Translator:    translator,
		Log:           log,
	})
	tgBot.Mount(engine, errHandler, translator.T("common.error"))

	go state.NewCleaner(machine, log, cfg.Session.IdleTimeout, cfg.Session.CleanupInterval).Run(ctx)
	go metrics.NewStateCollector(machine).Run(ctx)

	probes := lifecycle.NewProbes(checker, log)
	server := graceful.NewServer(log, &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           middleware.New(log)(graceful.NewMux(checker.Handler(), probes.Register)),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.ListenAndServe(ctx) }()

	shutdown.Register("probes", probes.Drain)
	shutdown.Register("telegram", func(context.Context) error {
		tgBot.Stop()
		return nil
	})

	if cfg.Jobs.Enabled {
		if !cfg.Redis.Enabled {
			return errors.New("jobs require redis.enabled")
		}
		if err := startJobs(cfg, engine, shutdown, log); err != nil {
			return err
		}
	}

	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
	}
	shutdown.Register("database", func(context.Context) error { return db.Close() })

	go tgBot.Start()

	select {
	case <-ctx.Done():
	case err := <-serverDone:
		if err != nil {
			log.Error("http server stopped", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}
	log.Info("storefront bot stopped")
	return nil
}

func catalogBreaker(log *slog.Logger) *apperrors.CircuitBreaker {
	metrics.SetBreakerState("catalog", int(apperrors.StateClosed))

	return apperrors.NewCircuitBreakerWithConfig(apperrors.BreakerConfig{
		OnStateChange: func(from, to apperrors.State) {
			log.Warn("catalog circuit breaker changed state",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.SetBreakerState("catalog", int(to))
		},
	})
}

func sessionStorage(cfg *config.Config, client *rediscache.MetricsClient, log *slog.Logger) (state.Storage, error) {
	if cfg.Session.Backend != "redis" {
		return state.NewMemoryStorage(), nil
	}
	if client == nil {
		return nil, errors.New("session.backend redis requires redis.enabled")
	}
	return state.NewRedisStorage(client, log, cfg.Session.TTL), nil
}

func startJobs(cfg *config.Config, engine *conversation.Engine, shutdown *lifecycle.Shutdown, log *slog.Logger) error {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := jobs.NewWorker(redisOpt, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypePriceCheck, jobhandlers.NewPriceCheckHandler(engine, log))
	if err := worker.Start(); err != nil {
		return fmt.Errorf("start jobs worker: %w", err)
	}

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(cfg.Prices.Schedule); err != nil {
		worker.Shutdown()
		return err
	}
	scheduler.Run()

	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("jobs", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	return nil
}
