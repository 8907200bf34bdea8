// Package state manages per-chat conversation sessions.
package state

import (
	"context"
	"sync"
	"time"
)

// Storage defines the persistence contract for chat sessions.
type Storage interface {
	// Get returns the session for chatID or ErrSessionNotFound.
	Get(ctx context.Context, chatID int64) (*Session, error)
	// Set stores session under chatID, stamping UpdatedAt.
	Set(ctx context.Context, chatID int64, session *Session) error
	// Clear removes the session for chatID. Clearing a missing session is not an error.
	Clear(ctx context.Context, chatID int64) error
	// All returns every stored session.
	All(ctx context.Context) ([]*Session, error)
}

// MemoryStorage keeps sessions in process memory.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewMemoryStorage creates an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

func (s *MemoryStorage) Get(_ context.Context, chatID int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStorage) Set(_ context.Context, chatID int64, session *Session) error {
	stored := session.Clone()
	stored.ChatID = chatID
	stored.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	s.sessions[chatID] = stored
	s.mu.Unlock()

	session.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *MemoryStorage) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) All(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	return out, nil
}
