package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-resty/resty/v2"
	"github.com/hibiken/asynq"

	"github.com/Proton-105/storefront-bot/internal/catalog"
	"github.com/Proton-105/storefront-bot/internal/database"
	"github.com/Proton-105/storefront-bot/internal/jobs"
	"github.com/Proton-105/storefront-bot/pkg/config"
	"github.com/Proton-105/storefront-bot/pkg/logger"
)

func main() {
	feedURL := flag.String("feed", "", "price feed URL, overrides importer.feed_url")
	notify := flag.Bool("notify", true, "enqueue a price check after a successful import")
	flag.Parse()

	if err := run(*feedURL, *notify); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(feedURL string, notify bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(*cfg).With(slog.String("component", "importer"))
	defer func() { _ = logger.Close() }()

	if feedURL == "" {
		feedURL = cfg.Importer.FeedURL
	}
	if feedURL == "" {
		return fmt.Errorf("no feed url: pass -feed or set importer.feed_url")
	}

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.NewMigrator(db, log).Up(ctx); err != nil {
		return err
	}

	client := resty.New().
		SetTimeout(cfg.Importer.Timeout).
		SetRetryCount(2).
		SetHeader("Accept", "application/json")

	count, err := catalog.NewImporter(client, catalog.NewRepository(db, log), log).Import(ctx, feedURL)
	if err != nil {
		return err
	}
	log.Info("catalog import finished", slog.Int("items", count))

	if !notify || !cfg.Jobs.Enabled || !cfg.Redis.Enabled {
		return nil
	}

	manager := jobs.NewManager(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	defer func() { _ = manager.Close() }()

	return manager.EnqueuePriceCheck(ctx, jobs.SourceImport)
}
