package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("SUPER_ADMIN_ID", "100")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "ledger_events", cfg.Events.Queue)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, time.Hour, cfg.Birthday.Interval)
	assert.Equal(t, 5*time.Hour, cfg.BirthdayOffset())
	assert.True(t, cfg.Birthday.InProcess)
	assert.Equal(t, 8, cfg.UpdateWorkers)
	assert.True(t, cfg.ProtectedAdmins().Contains(100))
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "token")
	t.Setenv("SUPER_ADMIN_ID", "100")
	t.Setenv("ADMIN2_ID", "200")
	t.Setenv("BIRTHDAY_UTC_OFFSET_HOURS", "3")
	t.Setenv("BIRTHDAY_IN_PROCESS", "false")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 200}, cfg.ProtectedAdmins().IDs())
	assert.Equal(t, 3*time.Hour, cfg.BirthdayOffset())
	assert.False(t, cfg.Birthday.InProcess)
}

func TestParseRequiresToken(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("TG_BOT_TOKEN"))
	t.Setenv("SUPER_ADMIN_ID", "100")

	_, err := Parse()
	assert.Error(t, err)
}
