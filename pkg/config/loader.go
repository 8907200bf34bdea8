// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Proton-105/storefront-bot/internal/bot/keyboard"
)

// defaults also registers the keys without a natural default so that
// AutomaticEnv can populate them during Unmarshal.
var defaults = map[string]any{
	"bot.token":          "",
	"bot.webhook_listen": "",
	"bot.webhook_url":    "",
	"bot.mode":           "polling",
	"bot.timeout":        10 * time.Second,
	"bot.workers":        8,
	"bot.queue_size":     64,

	"server.port":             ":8080",
	"server.shutdown_timeout": 10 * time.Second,

	"logger.level":        "info",
	"logger.format":       "text",
	"logger.max_size_mb":  50,
	"logger.max_backups":  5,
	"logger.max_age_days": 14,
	"logger.file":         "",
	"logger.compress":     false,

	"sentry.enabled":     false,
	"sentry.sample_rate": 1.0,
	"sentry.dsn":         "",
	"sentry.environment": "",

	"database.host":             "localhost",
	"database.user":             "",
	"database.password":         "",
	"database.port":             "5432",
	"database.name":             "storefront",
	"database.sslmode":          "disable",
	"database.max_connections":  10,
	"database.migrate_on_start": true,

	"redis.enabled":   false,
	"redis.addr":      "localhost:6379",
	"redis.pool_size": 10,
	"redis.password":  "",
	"redis.db":        0,

	"session.backend":          "memory",
	"session.ttl":              0,
	"session.idle_timeout":     0,
	"session.cleanup_interval": time.Minute,

	"catalog.page_size": 8,
	"catalog.categories": []string{
		"Часы", "Смартфоны", "Игровые приставки и геймпады", "Наушники", "Планшеты",
		"Ноутбуки", "Колонки", "Красота", "Аксессуары Apple", "Аксессуары Samsung",
	},

	"order.channel_id":      0,
	"order.thread_id":       0,
	"order.payment_methods": []string{"Предоплата", "Наличные", "Карта"},
	"order.shops":           []string{"Магазин 1", "Магазин 2"},

	"prices.channel_id":         0,
	"prices.thread_id":          0,
	"prices.schedule":           "*/30 * * * *",
	"prices.notify_subscribers": true,

	"messages.max_length": 4096,

	"jobs.enabled":     false,
	"jobs.concurrency": 2,

	"importer.timeout":  30 * time.Second,
	"importer.feed_url": "",
}

// Load reads configuration from YAML files and environment variables, validates it, and returns the resulting Config.
func Load() (*Config, *viper.Viper, error) {
	// env files are optional; real environment variables still apply
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "./configs"
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(filepath.Join(dir, fmt.Sprintf("%s.yaml", env)))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(v, env)
	if err != nil {
		return nil, nil, err
	}

	return cfg, v, nil
}

// Watch re-reads the config file on change and hands every valid result to
// onChange. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	if v == nil || onChange == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	env := v.GetString("app_env")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v, env)
		if err != nil {
			log.Warn("ignoring invalid config change", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		log.Info("config reloaded", slog.String("file", e.Name), slog.String("op", e.Op.String()))
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper, env string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("callback", fitsCallback); err != nil {
		return nil, fmt.Errorf("register callback validation: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// fitsCallback reports whether the field encodes into callback data under the
// action named by the tag parameter.
func fitsCallback(fl validator.FieldLevel) bool {
	_, err := keyboard.EncodeCallback(fl.Param(), fl.Field().String())
	return err == nil
}
