// Package app собирает зависимости сервисов из конфигурации.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/config"
	"tg-gate-bot/internal/infra/db"
	"tg-gate-bot/internal/infra/queue"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/ledger"
	"tg-gate-bot/internal/usecase/moderation"
)

// OpenStore подключает Postgres и применяет схему. Без PG_DSN данные хранятся в памяти.
func OpenStore(ctx context.Context, dsn string, logger zerolog.Logger) (domain.Store, func(), error) {
	if dsn == "" {
		logger.Warn().Msg("app: PG_DSN не задан, данные хранятся в памяти")
		return repo.NewMemory(), func() {}, nil
	}
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("подключение к БД: %w", err)
	}
	store := repo.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

// OpenRedis подключается к Redis. Пустой адрес возвращает nil без ошибки.
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewPublisher выбирает публикатор событий: RabbitMQ, Redis list или лог.
func NewPublisher(cfg config.AppConfig, rdb *redis.Client, logger zerolog.Logger) (domain.EventPublisher, func(), error) {
	switch {
	case cfg.Events.RabbitURL != "":
		p, err := queue.NewRabbitPublisher(cfg.Events.RabbitURL, cfg.Events.Queue)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("queue", cfg.Events.Queue).Msg("app: события кредитов публикуются в RabbitMQ")
		return p, func() {
			if err := p.Close(); err != nil {
				logger.Warn().Err(err).Msg("app: ошибка закрытия RabbitMQ")
			}
		}, nil
	case rdb != nil:
		logger.Info().Str("key", cfg.Events.Queue).Msg("app: события кредитов публикуются в Redis")
		return queue.NewRedisPublisher(rdb, cfg.Events.Queue), func() {}, nil
	default:
		return queue.NewLogPublisher(logger), func() {}, nil
	}
}

// Services объединяет сервисы, общие для бота и планировщика.
type Services struct {
	Catalog *catalog.Service
	Ledger  *ledger.Service
	Bridge  *moderation.Bridge
}

// NewServices создаёт сервисы и гарантирует наличие администраторов из конфигурации.
func NewServices(ctx context.Context, store domain.Store, messenger Messenger, protected domain.ProtectedAdmins, events domain.EventPublisher, logger zerolog.Logger) (Services, error) {
	cat := catalog.NewService(store, messenger, protected, logger)
	if err := cat.EnsureAdmins(ctx); err != nil {
		return Services{}, fmt.Errorf("регистрация администраторов: %w", err)
	}
	led := ledger.NewService(store, store, events, logger)
	bridge := moderation.NewBridge(messenger, store, store, cat, cat, led, logger)
	return Services{Catalog: cat, Ledger: led, Bridge: bridge}, nil
}

// Messenger — транспорт, умеющий ещё и получать названия чатов.
type Messenger interface {
	domain.Messenger
	catalog.TitleResolver
}
