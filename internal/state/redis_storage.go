package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern = "session:%d"
	sessionKeyPrefix  = "session:"
)

// KV is the subset of the Redis client used for session storage.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// RedisStorage persists sessions as JSON in Redis.
type RedisStorage struct {
	client KV
	log    *slog.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStorage initializes a Redis-backed Storage. A zero ttl keeps keys
// until they are cleared.
func NewRedisStorage(client KV, log *slog.Logger, ttl time.Duration) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the stored session or ErrSessionNotFound when absent.
func (s *RedisStorage) Get(ctx context.Context, chatID int64) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}

		s.log.Error("failed to get session from redis", "chat_id", chatID, "error", err)
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		s.log.Error("failed to decode session", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCorruptedSession, err)
	}

	return &session, nil
}

// Set saves the session, refreshing the TTL.
func (s *RedisStorage) Set(ctx context.Context, chatID int64, session *Session) error {
	session.ChatID = chatID
	session.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		s.log.Error("failed to encode session", "chat_id", chatID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, sessionKey(chatID), data, s.ttl); err != nil {
		s.log.Error("failed to save session in redis", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// Clear removes the stored session for the given chat.
func (s *RedisStorage) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Delete(ctx, sessionKey(chatID)); err != nil {
		s.log.Error("failed to clear session", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// All retrieves every stored session by scanning keys. Undecodable entries
// are skipped.
func (s *RedisStorage) All(ctx context.Context) ([]*Session, error) {
	keys, err := s.client.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		s.log.Error("failed to scan sessions", "error", err)
		return nil, err
	}

	result := make([]*Session, 0, len(keys))
	for _, key := range keys {
		chatID, err := strconv.ParseInt(strings.TrimPrefix(key, sessionKeyPrefix), 10, 64)
		if err != nil {
			s.log.Warn("skipping foreign session key", "key", key)
			continue
		}

		session, err := s.Get(ctx, chatID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrCorruptedSession) {
				continue
			}
			return nil, err
		}

		result = append(result, session)
	}

	return result, nil
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf(sessionKeyPattern, chatID)
}
