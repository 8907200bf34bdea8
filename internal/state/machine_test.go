package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

var errStorageFailure = errors.New("storage error")

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Get(ctx context.Context, chatID int64) (*Session, error) {
	args := m.Called(ctx, chatID)
	session, _ := args.Get(0).(*Session)
	return session, args.Error(1)
}

func (m *mockStorage) Set(ctx context.Context, chatID int64, session *Session) error {
	args := m.Called(ctx, chatID, session)
	return args.Error(0)
}

func (m *mockStorage) Clear(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *mockStorage) All(ctx context.Context) ([]*Session, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]*Session)
	return sessions, args.Error(1)
}

func TestMachine_Transition(t *testing.T) {
	ctx := context.Background()
	chatID := int64(42)

	testCases := []struct {
		name        string
		from        State
		to          State
		setupMocks  func(ms *mockStorage)
		expectedErr error
		finalState  State
	}{
		{
			name: "idle to order search stores session",
			from: StateIdle,
			to:   StateSearchingProductForOrder,
			setupMocks: func(ms *mockStorage) {
				ms.On("Set", mock.Anything, chatID, mock.MatchedBy(func(s *Session) bool {
					return s.State == StateSearchingProductForOrder
				})).Return(nil).Once()
			},
			finalState: StateSearchingProductForOrder,
		},
		{
			name: "terminal transition clears session",
			from: StateEnteringComment,
			to:   StateIdle,
			setupMocks: func(ms *mockStorage) {
				ms.On("Clear", mock.Anything, chatID).Return(nil).Once()
			},
			finalState: StateIdle,
		},
		{
			name:        "invalid transition touches nothing",
			from:        StateIdle,
			to:          StateEnteringComment,
			setupMocks:  func(ms *mockStorage) {},
			expectedErr: ErrInvalidTransition,
			finalState:  StateIdle,
		},
		{
			name: "storage failure keeps previous state",
			from: StateEnteringFio,
			to:   StateSelectingShop,
			setupMocks: func(ms *mockStorage) {
				ms.On("Set", mock.Anything, chatID, mock.Anything).Return(errStorageFailure).Once()
			},
			expectedErr: errStorageFailure,
			finalState:  StateEnteringFio,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			m := NewMachine(ms, testLogger())
			session := &Session{ChatID: chatID, State: tc.from}
			err := m.Transition(ctx, session, tc.to)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.finalState, session.State)

			ms.AssertExpectations(t)
		})
	}
}

func TestMachine_Load(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		stored      *Session
		storedErr   error
		expectNil   bool
		expectedErr error
	}{
		{name: "idle chat", storedErr: ErrSessionNotFound, expectNil: true},
		{name: "active session", stored: &Session{ChatID: 1, State: StateEnteringFio}},
		{name: "unknown state", stored: &Session{ChatID: 1, State: "buying_confirm"}, expectedErr: ErrCorruptedSession},
		{name: "stored idle", stored: &Session{ChatID: 1, State: StateIdle}, expectedErr: ErrCorruptedSession},
		{name: "storage failure", storedErr: errStorageFailure, expectNil: true, expectedErr: errStorageFailure},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			ms.On("Get", mock.Anything, int64(1)).Return(tc.stored, tc.storedErr).Once()

			session, err := NewMachine(ms, testLogger()).Load(ctx, 1)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			if tc.expectNil {
				assert.Nil(t, session)
			} else {
				assert.NotNil(t, session)
			}
		})
	}
}

func TestMachine_RecordsTransitions(t *testing.T) {
	var (
		mu       sync.Mutex
		recorded [][2]string
	)
	RegisterTransitionRecorder(func(from, to string) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, [2]string{from, to})
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	ctx := context.Background()
	m := NewMachine(NewMemoryStorage(), testLogger())

	session := &Session{ChatID: 5}
	require.NoError(t, m.Transition(ctx, session, StateSearchingProduct))
	require.NoError(t, m.Transition(ctx, session, StateIdle))
	require.NoError(t, m.Reset(ctx, 5, StateEnteringFio))
	require.NoError(t, m.Reset(ctx, 5, StateIdle))

	assert.Equal(t, [][2]string{
		{"idle", "searching_product"},
		{"searching_product", "idle"},
		{"entering_fio", "idle"},
	}, recorded)
}

func TestMachine_LockSerializesChat(t *testing.T) {
	m := NewMachine(NewMemoryStorage(), testLogger())

	var (
		active  int32
		overlap int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock := m.Lock(7)
			defer unlock()

			if atomic.AddInt32(&active, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
	assert.Empty(t, m.locks.entries)
}

func TestMachine_LockDoesNotBlockOtherChats(t *testing.T) {
	m := NewMachine(NewMemoryStorage(), testLogger())

	unlock := m.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := m.Lock(2)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on chat 2 blocked by chat 1")
	}
}

func TestMemoryStorage_IsolatesCopies(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	item := catalog.Item{ID: 1, Category: "Часы", Name: "Watch"}
	session := &Session{State: StateSelectingProductForOrder, SearchResults: []catalog.Item{item}, SelectedProduct: &item}
	require.NoError(t, storage.Set(ctx, 9, session))

	session.SearchResults[0].Name = "mutated"
	session.SelectedProduct.Name = "mutated"

	stored, err := storage.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), stored.ChatID)
	assert.Equal(t, "Watch", stored.SearchResults[0].Name)
	assert.Equal(t, "Watch", stored.SelectedProduct.Name)
	assert.False(t, stored.UpdatedAt.IsZero())

	all, err := storage.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, storage.Clear(ctx, 9))
	_, err = storage.Get(ctx, 9)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, storage.Clear(ctx, 9))
}

func TestSession_FindResult(t *testing.T) {
	session := &Session{SearchResults: []catalog.Item{{ID: 3, Name: "a"}, {ID: 8, Name: "b"}}}

	item, ok := session.FindResult(8)
	assert.True(t, ok)
	assert.Equal(t, "b", item.Name)

	_, ok = session.FindResult(99)
	assert.False(t, ok)

	var empty *Session
	_, ok = empty.FindResult(3)
	assert.False(t, ok)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
