package cache

import (
	"context"
	"sync"
	"time"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// MemoryCache реализует domain.Cache в памяти процесса.
type MemoryCache struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

var _ domain.Cache = (*MemoryCache)(nil)

// NewMemory создаёт кэш в памяти.
func NewMemory() *MemoryCache {
	return &MemoryCache{keys: make(map[string]time.Time), now: time.Now}
}

// Once выполняет функцию, если ключ не задан или его срок истёк.
func (c *MemoryCache) Once(_ context.Context, key string, ttl time.Duration, fn func() error) error {
	c.mu.Lock()
	now := c.now()
	if expires, ok := c.keys[key]; ok && now.Before(expires) {
		c.mu.Unlock()
		metrics.DuplicateUpdates.Inc()
		return nil
	}
	c.keys[key] = now.Add(ttl)
	c.evict(now)
	c.mu.Unlock()

	if err := fn(); err != nil {
		c.mu.Lock()
		delete(c.keys, key)
		c.mu.Unlock()
		return err
	}
	return nil
}

// evict удаляет истёкшие ключи; вызывается под блокировкой.
func (c *MemoryCache) evict(now time.Time) {
	for key, expires := range c.keys {
		if !now.Before(expires) {
			delete(c.keys, key)
		}
	}
}
