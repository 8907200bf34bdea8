package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_SweepClearsIdleSessions(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	machine := NewMachine(storage, testLogger())

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return base }
	require.NoError(t, storage.Set(ctx, 1, &Session{State: StateEnteringFio}))

	storage.now = func() time.Time { return base.Add(20 * time.Minute) }
	require.NoError(t, storage.Set(ctx, 2, &Session{State: StateSearchingProduct}))

	cleaner := NewCleaner(machine, testLogger(), 15*time.Minute, time.Minute)
	cleaner.now = func() time.Time { return base.Add(25 * time.Minute) }

	assert.Equal(t, 1, cleaner.sweep(ctx))

	_, err := storage.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = storage.Get(ctx, 2)
	assert.NoError(t, err)
}

func TestCleaner_DisabledReturnsImmediately(t *testing.T) {
	cleaner := NewCleaner(NewMachine(NewMemoryStorage(), testLogger()), testLogger(), 0, time.Millisecond)

	done := make(chan struct{})
	go func() {
		cleaner.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled cleaner kept running")
	}
}

func TestCleaner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cleaner := NewCleaner(NewMachine(NewMemoryStorage(), testLogger()), testLogger(), time.Minute, time.Millisecond)

	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}
