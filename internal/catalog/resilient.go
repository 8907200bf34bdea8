package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
)

// ResilientSource retries transient failures of the wrapped source and stops
// calling it while the circuit breaker is open.
type ResilientSource struct {
	next    Source
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewResilientSource wraps next with retry and circuit breaking.
func NewResilientSource(next Source, breaker *apperrors.CircuitBreaker, log *slog.Logger) *ResilientSource {
	if log == nil {
		log = slog.Default()
	}
	if breaker == nil {
		breaker = apperrors.NewCircuitBreaker()
	}

	return &ResilientSource{next: next, breaker: breaker, log: log}
}

// FetchSnapshot implements Source.
func (s *ResilientSource) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	var snapshot *Snapshot

	err := apperrors.WithRetry(ctx, func() error {
		return s.breaker.Call(func() error {
			fetched, err := s.next.FetchSnapshot(ctx)
			if err != nil {
				return apperrors.NewDatabaseError(err)
			}
			snapshot = fetched
			return nil
		})
	})
	if err != nil {
		s.log.Warn("catalog fetch failed", slog.Any("error", err))
		if !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}

	return snapshot, nil
}
