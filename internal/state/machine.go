package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidTransition indicates that a requested transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSessionNotFound indicates that no session is stored for the chat.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCorruptedSession indicates a stored session that cannot be driven.
	ErrCorruptedSession = errors.New("corrupted session")
)

var (
	recorderMu         sync.RWMutex
	transitionRecorder = func(from, to string) {}
)

// RegisterTransitionRecorder allows external packages to observe transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	recorderMu.Lock()
	defer recorderMu.Unlock()

	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

func recordTransition(from, to State) {
	recorderMu.RLock()
	record := transitionRecorder
	recorderMu.RUnlock()

	record(string(from), string(to))
}

// Machine drives sessions through validated transitions on top of Storage.
// Callers hold Lock(chatID) for the whole read-modify-write of one event.
type Machine struct {
	storage Storage
	log     *slog.Logger
	locks   keyedMutex
}

// NewMachine creates a Machine backed by storage.
func NewMachine(storage Storage, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		storage: storage,
		log:     log,
		locks:   keyedMutex{entries: make(map[int64]*lockEntry)},
	}
}

// Lock serializes work on one chat and returns the matching unlock.
func (m *Machine) Lock(chatID int64) func() {
	return m.locks.lock(chatID)
}

// Load returns the chat session, or nil when the chat is idle. A session in an
// unknown state is returned together with ErrCorruptedSession.
func (m *Machine) Load(ctx context.Context, chatID int64) (*Session, error) {
	session, err := m.storage.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session == nil {
		return nil, nil
	}

	if session.State == StateIdle || !session.State.Valid() {
		return session, fmt.Errorf("%w: chat %d in state %q", ErrCorruptedSession, chatID, session.State)
	}

	return session, nil
}

// Transition moves session to the next state and persists it. Moving to Idle
// clears the stored session.
func (m *Machine) Transition(ctx context.Context, session *Session, to State) error {
	from := session.State
	if from == "" {
		from = StateIdle
	}

	if !IsTransitionAllowed(from, to) {
		m.log.Warn("invalid state transition",
			slog.Int64("chat_id", session.ChatID),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if to == StateIdle {
		if err := m.storage.Clear(ctx, session.ChatID); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	} else {
		session.State = to
		if err := m.storage.Set(ctx, session.ChatID, session); err != nil {
			session.State = from
			return fmt.Errorf("save session: %w", err)
		}
	}

	session.State = to
	recordTransition(from, to)
	return nil
}

// Save persists session data without changing its state.
func (m *Machine) Save(ctx context.Context, session *Session) error {
	if err := m.storage.Set(ctx, session.ChatID, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Reset discards whatever is stored for chatID.
func (m *Machine) Reset(ctx context.Context, chatID int64, from State) error {
	if err := m.storage.Clear(ctx, chatID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if from != "" && from != StateIdle {
		recordTransition(from, StateIdle)
	}
	return nil
}

// All returns every stored session.
func (m *Machine) All(ctx context.Context) ([]*Session, error) {
	return m.storage.All(ctx)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per chat and frees it once unused.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

func (k *keyedMutex) lock(key int64) func() {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			k.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}
