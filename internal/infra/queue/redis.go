package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// RedisPublisher складывает события журнала кредитов в Redis list.
type RedisPublisher struct {
	client *redis.Client
	key    string
}

var _ domain.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher создаёт публикатор по указанному ключу.
func NewRedisPublisher(client *redis.Client, key string) *RedisPublisher {
	return &RedisPublisher{client: client, key: key}
}

// Publish добавляет событие в начало списка; потребитель читает через BRPOP.
func (q *RedisPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}
