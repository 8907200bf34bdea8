package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/catalog"
	"github.com/Proton-105/storefront-bot/internal/jobs"
	"github.com/Proton-105/storefront-bot/internal/pricediff"
)

type stubChecker struct {
	report pricediff.Report
	err    error
	calls  int
}

func (s *stubChecker) RunScheduledPriceCheck(context.Context) (pricediff.Report, error) {
	s.calls++
	return s.report, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func priceCheckTask(t *testing.T) *asynq.Task {
	t.Helper()

	task, err := jobs.NewPriceCheckTask(jobs.SourceSchedule, time.Now(), time.Minute)
	require.NoError(t, err)
	return task
}

func TestPriceCheckHandler_ProcessTask(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		wantErr   bool
		wantRetry bool
	}{
		{name: "success"},
		{name: "catalog unavailable is retried", err: fmt.Errorf("fetch snapshot: %w", catalog.ErrUnavailable), wantErr: true, wantRetry: true},
		{name: "broadcast failure is not retried", err: errors.New("broadcast to chat -100 failed"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checker := &stubChecker{err: tc.err, report: pricediff.Report{Version: 2}}
			handler := NewPriceCheckHandler(checker, testLogger())

			err := handler.ProcessTask(context.Background(), priceCheckTask(t))

			assert.Equal(t, 1, checker.calls)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, !tc.wantRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestPriceCheckHandler_BadPayload(t *testing.T) {
	checker := &stubChecker{}
	handler := NewPriceCheckHandler(checker, testLogger())

	err := handler.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskTypePriceCheck, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, checker.calls)
}
