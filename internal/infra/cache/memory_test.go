package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/domain"
)

func TestMemoryCacheOnce(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	calls := 0
	fn := func() error { calls++; return nil }

	require.NoError(t, c.Once(ctx, "update:1", time.Minute, fn))
	require.NoError(t, c.Once(ctx, "update:1", time.Minute, fn))
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	require.NoError(t, c.Once(ctx, "update:1", time.Minute, fn))
	assert.Equal(t, 2, calls)
}

func TestMemoryCacheOnceRetriesAfterError(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	boom := errors.New("boom")

	err := c.Once(ctx, "k", time.Hour, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	called := false
	require.NoError(t, c.Once(ctx, "k", time.Hour, func() error { called = true; return nil }))
	assert.True(t, called)
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessions()

	empty, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, empty.Idle())

	session := domain.Session{State: domain.StateRegLastName}.Put(domain.DraftFirstName, "Ali")
	require.NoError(t, s.Save(ctx, 1, session))

	session.Draft[domain.DraftFirstName] = "changed"
	loaded, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRegLastName, loaded.State)
	assert.Equal(t, "Ali", loaded.Get(domain.DraftFirstName))

	require.NoError(t, s.Clear(ctx, 1))
	loaded, err = s.Load(ctx, 1)
	require.NoError(t, err)
	assert.True(t, loaded.Idle())
}
