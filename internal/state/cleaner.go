package state

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner clears sessions that were not touched for longer than the idle timeout.
type Cleaner struct {
	machine  *Machine
	log      *slog.Logger
	idle     time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewCleaner constructs a Cleaner. A non-positive idle timeout disables it.
func NewCleaner(machine *Machine, log *slog.Logger, idle, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Cleaner{
		machine:  machine,
		log:      log,
		idle:     idle,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.machine == nil || c.idle <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	sessions, err := c.machine.All(ctx)
	if err != nil {
		c.log.Error("session cleaner failed to list sessions", slog.Any("error", err))
		return 0
	}

	var cleared int
	for _, session := range sessions {
		if !c.expired(session) {
			continue
		}
		if c.clearIfExpired(ctx, session.ChatID) {
			cleared++
		}
	}

	if cleared > 0 {
		c.log.Info("idle sessions cleared", slog.Int("count", cleared))
	}
	return cleared
}

// clearIfExpired re-reads the session under the chat lock so an event that
// just touched it wins.
func (c *Cleaner) clearIfExpired(ctx context.Context, chatID int64) bool {
	unlock := c.machine.Lock(chatID)
	defer unlock()

	current, err := c.machine.storage.Get(ctx, chatID)
	if err != nil || !c.expired(current) {
		return false
	}

	if err := c.machine.Reset(ctx, chatID, current.State); err != nil {
		c.log.Error("session cleaner failed to clear session", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return false
	}
	return true
}

func (c *Cleaner) expired(session *Session) bool {
	return session != nil && c.now().Sub(session.UpdatedAt) > c.idle
}
