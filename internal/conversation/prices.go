package conversation

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/Proton-105/storefront-bot/internal/errors"
	"github.com/Proton-105/storefront-bot/internal/pricediff"
	"github.com/Proton-105/storefront-bot/pkg/metrics"
)

const (
	triggerManual    = "manual"
	triggerScheduled = "scheduled"
)

// checkPrices runs the detector on behalf of a user.
func (e *Engine) checkPrices(ctx context.Context, chatID int64) []Intent {
	snapshot, err := e.fetch(ctx)
	if err != nil {
		metrics.RecordPriceCheck(triggerManual, "failed", 0)
		return []Intent{sendText(chatID, e.t.T("prices.failed"))}
	}

	report := e.detector.Check(snapshot)
	switch {
	case report.BaselineEstablished:
		metrics.RecordPriceCheck(triggerManual, "baseline", 0)
		return []Intent{sendText(chatID, e.t.T("prices.baseline"))}
	case len(report.Changes) == 0:
		metrics.RecordPriceCheck(triggerManual, "unchanged", 0)
		return []Intent{sendText(chatID, e.t.T("prices.none"))}
	}

	metrics.RecordPriceCheck(triggerManual, "changed", len(report.Changes))

	text := e.renderChanges(report.Changes)
	intents := e.sendMarkdown(chatID, text)
	if err := e.publishChanges(ctx, text, chatID); err != nil {
		e.errors.Handle(ctx, apperrors.NewBroadcastError(e.cfg.PriceTarget.ChatID, err))
		intents = append(intents, sendText(chatID, e.t.T("prices.broadcast_failed")))
	}

	return intents
}

// RunScheduledPriceCheck performs the detector run triggered by the job
// scheduler. Changes go to the price channel and every subscriber.
func (e *Engine) RunScheduledPriceCheck(ctx context.Context) (pricediff.Report, error) {
	snapshot, err := e.catalog.FetchSnapshot(ctx)
	if err != nil {
		metrics.RecordPriceCheck(triggerScheduled, "failed", 0)
		return pricediff.Report{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	report := e.detector.Check(snapshot)
	if len(report.Changes) == 0 {
		outcome := "unchanged"
		if report.BaselineEstablished {
			outcome = "baseline"
		}
		metrics.RecordPriceCheck(triggerScheduled, outcome, 0)
		return report, nil
	}

	metrics.RecordPriceCheck(triggerScheduled, "changed", len(report.Changes))

	if err := e.publishChanges(ctx, e.renderChanges(report.Changes), 0); err != nil {
		return report, apperrors.NewBroadcastError(e.cfg.PriceTarget.ChatID, err)
	}
	return report, nil
}

// publishChanges posts to the price channel and notifies subscribers other
// than skip. Only the channel failure is returned.
func (e *Engine) publishChanges(ctx context.Context, text string, skip int64) error {
	var channelErr error
	if e.cfg.PriceTarget.ChatID != 0 {
		for _, chunk := range splitText(text, e.cfg.MaxMessageLength) {
			if err := e.broadcaster.Post(ctx, e.cfg.PriceTarget, chunk, true); err != nil {
				channelErr = err
				break
			}
		}
	}

	if !e.cfg.NotifySubscribers || e.subs == nil {
		return channelErr
	}

	for _, chatID := range e.subs.List() {
		if chatID == skip {
			continue
		}
		for _, chunk := range splitText(text, e.cfg.MaxMessageLength) {
			if err := e.broadcaster.Post(ctx, Target{ChatID: chatID}, chunk, true); err != nil {
				e.log.WarnContext(ctx, "subscriber notification failed",
					slog.Int64("subscriber", chatID),
					slog.Any("error", err),
				)
				break
			}
		}
	}

	return channelErr
}
