package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/state"
)

func TestStateCollector_Collect(t *testing.T) {
	ctx := context.Background()
	storage := state.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, 1, &state.Session{State: state.StateEnteringFio}))
	require.NoError(t, storage.Set(ctx, 2, &state.Session{State: state.StateEnteringFio}))
	require.NoError(t, storage.Set(ctx, 3, &state.Session{State: "legacy"}))

	require.NoError(t, NewStateCollector(storage).collect(ctx))

	assert.Equal(t, 3.0, testutil.ToFloat64(activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(sessionsByState.WithLabelValues("entering_fio")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sessionsByState.WithLabelValues("entering_comment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sessionsByState.WithLabelValues("unknown")))
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(stateTransitionsTotal.WithLabelValues("idle", "searching_product"))
	machine := state.NewMachine(state.NewMemoryStorage(), nil)
	require.NoError(t, machine.Transition(context.Background(), &state.Session{ChatID: 1}, state.StateSearchingProduct))
	assert.Equal(t, before+1, testutil.ToFloat64(stateTransitionsTotal.WithLabelValues("idle", "searching_product")))

	RecordPriceCheck("manual", "changed", 3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(priceChangesTotal), 3.0)

	RecordError("", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(errorsTotal.WithLabelValues("unknown", "unknown")))
}

func TestRecordJob(t *testing.T) {
	RecordJob("catalog:price_check", "ok", time.Second)
	RecordJob("catalog:price_check", "error", time.Second)
	RecordJob("", "", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(jobsProcessedTotal.WithLabelValues("catalog:price_check", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(jobsProcessedTotal.WithLabelValues("catalog:price_check", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(jobsProcessedTotal.WithLabelValues("unknown", "unknown")))
}
