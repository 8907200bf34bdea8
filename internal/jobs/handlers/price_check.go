package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/storefront-bot/internal/catalog"
	"github.com/Proton-105/storefront-bot/internal/jobs"
	"github.com/Proton-105/storefront-bot/internal/pricediff"
)

// PriceChecker runs one detector pass and publishes the changes.
type PriceChecker interface {
	RunScheduledPriceCheck(ctx context.Context) (pricediff.Report, error)
}

type PriceCheckHandler struct {
	checker PriceChecker
	log     *slog.Logger
}

func NewPriceCheckHandler(checker PriceChecker, log *slog.Logger) *PriceCheckHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PriceCheckHandler{checker: checker, log: log}
}

// ProcessTask retries only when the catalog was unreachable. Once the detector
// ran its baseline has moved, so a retry would report nothing.
func (h *PriceCheckHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := jobs.ParsePriceCheckPayload(t)
	if err != nil {
		h.log.ErrorContext(ctx, "price check: invalid task", slog.String("task_type", t.Type()), slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := h.checker.RunScheduledPriceCheck(ctx)
	switch {
	case errors.Is(err, catalog.ErrUnavailable):
		return err
	case err != nil:
		h.log.ErrorContext(ctx, "price check: publishing failed",
			slog.String("source", payload.Source),
			slog.Int("changes", len(report.Changes)),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	h.log.InfoContext(ctx, "price check finished",
		slog.String("source", payload.Source),
		slog.Bool("baseline", report.BaselineEstablished),
		slog.Int("changes", len(report.Changes)),
		slog.Uint64("version", report.Version),
	)
	return nil
}
