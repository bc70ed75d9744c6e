package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

const sessionPrefix = "session:"

// RedisSessions хранит состояние диалога в Redis с TTL.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domain.SessionStore = (*RedisSessions)(nil)

// NewRedisSessions создаёт хранилище сессий. ttl <= 0 означает хранение без срока.
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return sessionPrefix + strconv.FormatInt(userID, 10)
}

// Load возвращает сессию или пустую, если её нет.
func (s *RedisSessions) Load(ctx context.Context, userID int64) (domain.Session, error) {
	start := time.Now()
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveNetworkRequest("redis", "get", "session", start, nil)
		return domain.Session{}, nil
	}
	metrics.ObserveNetworkRequest("redis", "get", "session", start, err)
	if err != nil {
		return domain.Session{}, fmt.Errorf("чтение сессии: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("разбор сессии: %w", err)
	}
	return session, nil
}

// Save сохраняет сессию и продлевает TTL.
func (s *RedisSessions) Save(ctx context.Context, userID int64, session domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("кодирование сессии: %w", err)
	}
	start := time.Now()
	err = s.client.Set(ctx, sessionKey(userID), payload, s.ttl).Err()
	metrics.ObserveNetworkRequest("redis", "set", "session", start, err)
	return err
}

// Clear удаляет сессию.
func (s *RedisSessions) Clear(ctx context.Context, userID int64) error {
	start := time.Now()
	err := s.client.Del(ctx, sessionKey(userID)).Err()
	metrics.ObserveNetworkRequest("redis", "del", "session", start, err)
	return err
}

// MemorySessions хранит сессии в памяти процесса.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
}

var _ domain.SessionStore = (*MemorySessions)(nil)

// NewMemorySessions создаёт хранилище сессий в памяти.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[int64]domain.Session)}
}

// Load возвращает копию сессии.
func (s *MemorySessions) Load(_ context.Context, userID int64) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.sessions[userID]), nil
}

// Save сохраняет копию сессии.
func (s *MemorySessions) Save(_ context.Context, userID int64, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = copySession(session)
	return nil
}

// Clear удаляет сессию.
func (s *MemorySessions) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func copySession(session domain.Session) domain.Session {
	if session.Draft == nil {
		return domain.Session{State: session.State}
	}
	draft := make(map[string]string, len(session.Draft))
	for k, v := range session.Draft {
		draft[k] = v
	}
	return domain.Session{State: session.State, Draft: draft}
}
