package config_test

import (
	"testing"
	"time"

	"bot-ladder/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "ladder.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, time.Second, cfg.ScheduleBackoff)
	assert.Equal(t, int64(8), cfg.EventThreshold)
	assert.Equal(t, 24*time.Hour, cfg.PublishWindow)
	assert.NotEmpty(t, cfg.MapPool)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "12")
	t.Setenv("SCHEDULE_BACKOFF_MS", "250")
	t.Setenv("EVENT_THRESHOLD", "16")
	t.Setenv("MAP_POOL", "Fighting Spirit, Python")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.WorkerCount)
	assert.Equal(t, 250*time.Millisecond, cfg.ScheduleBackoff)
	assert.Equal(t, int64(16), cfg.EventThreshold)
	assert.Equal(t, []string{"Fighting Spirit", "Python"}, cfg.MapPool)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	_, err := config.Load(zerolog.Nop())
	assert.Error(t, err)

	t.Setenv("WORKER_COUNT", "0")
	_, err = config.Load(zerolog.Nop())
	assert.Error(t, err)
}
