// Package lifecycle coordinates probes and the ordered shutdown of the bot.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Shutdown runs hooks one after another in registration order, so producers
// stop before the stores they write to are closed.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	s.RegisterHook(Hook{Name: name, Fn: fn})
}

// RegisterHook adds a hook with its own timeout.
func (s *Shutdown) RegisterHook(hook Hook) {
	if hook.Fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook)
}

// Execute runs every hook even when earlier ones fail and joins their errors.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var errs []error
	for _, hook := range hooks {
		hookStart := time.Now()
		if err := hook.run(ctx); err != nil {
			s.log.Error("shutdown hook failed", slog.String("hook", hook.Name), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", hook.Name, err))
			continue
		}
		s.log.Info("shutdown hook completed", slog.String("hook", hook.Name), slog.Duration("elapsed", time.Since(hookStart)))
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}
