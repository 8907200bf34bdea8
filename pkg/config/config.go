package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the storefront bot and importer.
type Config struct {
	AppEnv   string         `mapstructure:"app_env"`
	Bot      BotConfig      `mapstructure:"bot"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Order    OrderConfig    `mapstructure:"order"`
	Prices   PricesConfig   `mapstructure:"prices"`
	Messages MessagesConfig `mapstructure:"messages"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Importer ImporterConfig `mapstructure:"importer"`
}

type BotConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WebhookListen string        `mapstructure:"webhook_listen" validate:"required_if=Mode webhook"`
	WebhookURL    string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook,omitempty,url"`
	// Workers is the number of chat shards processing updates concurrently.
	Workers   int `mapstructure:"workers" validate:"min=1"`
	QueueSize int `mapstructure:"queue_size" validate:"min=1"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           string `mapstructure:"port" validate:"required"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name" validate:"required"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections" validate:"min=1"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type SessionConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory redis"`
	// TTL bounds how long redis keeps a session key; 0 keeps it forever.
	TTL time.Duration `mapstructure:"ttl"`
	// IdleTimeout clears sessions untouched for that long; 0 disables reaping.
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type CatalogConfig struct {
	Categories []string `mapstructure:"categories" validate:"min=1,dive,required"`
	PageSize   int      `mapstructure:"page_size" validate:"min=1,max=50"`
}

type OrderConfig struct {
	ChannelID      int64    `mapstructure:"channel_id" validate:"required"`
	ThreadID       int      `mapstructure:"thread_id"`
	PaymentMethods []string `mapstructure:"payment_methods" validate:"min=1,dive,required,max=24,callback=payment"`
	Shops          []string `mapstructure:"shops" validate:"min=1,dive,required,max=24,callback=shop"`
}

type PricesConfig struct {
	ChannelID         int64  `mapstructure:"channel_id"`
	ThreadID          int    `mapstructure:"thread_id"`
	Schedule          string `mapstructure:"schedule"`
	NotifySubscribers bool   `mapstructure:"notify_subscribers"`
}

type MessagesConfig struct {
	MaxLength int `mapstructure:"max_length" validate:"min=64,max=4096"`
}

type JobsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency" validate:"min=1"`
}

type ImporterConfig struct {
	FeedURL string        `mapstructure:"feed_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}
