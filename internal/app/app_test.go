package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/adapters/telegram/telegramtest"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/config"
	"tg-gate-bot/internal/infra/queue"
)

func TestOpenStoreWithoutDSN(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), "", zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &repo.Memory{}, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenRedisDisabled(t *testing.T) {
	client, err := OpenRedis(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewPublisherFallsBackToLog(t *testing.T) {
	p, closeFn, err := NewPublisher(config.AppConfig{}, nil, zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, queue.LogPublisher{}, p)
}

func TestNewServicesRegistersProtectedAdmins(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemory()
	msg := telegramtest.New()
	svc, err := NewServices(ctx, store, msg, domain.ProtectedAdmins{100, 0}, nil, zerolog.Nop())
	require.NoError(t, err)

	ok, err := svc.Catalog.IsAdmin(ctx, 100)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, svc.Bridge.NotifyAdmins(ctx, "salom"))
	assert.Equal(t, []string{"salom"}, msg.Texts("100"))
}
