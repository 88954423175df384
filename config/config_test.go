package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "accounts", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 10*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.NotEqual(t, cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	assert.Equal(t, "./public/temp", cfg.Upload.TempDir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "30m")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("APP_DEBUG", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.App.Debug)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*24*time.Hour, cfg.JWT.RefreshExpiry)
}

func TestConnectionStrings(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	dsn := cfg.DatabaseConnectionString()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "password=hunter2")
	assert.Contains(t, dsn, "sslmode=disable")

	assert.Equal(t, "cache.internal:6380", cfg.RedisAddress())
}
