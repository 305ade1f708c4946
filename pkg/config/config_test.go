package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ORDO_CONFIG", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
		"ORDO_STORE", "DATABASE_URL", "ORDO_SQLITE_PATH", "REDIS_URL", "ORDO_REDIS_PREFIX",
		"RABBITMQ_URL", "ORDO_PAGE_SIZE", "ORDO_ROW_HEIGHT", "ORDO_SWAP_FRACTION",
		"ORDO_BREAKER_ENABLED", "ORDO_BREAKER_FAILURES", "ORDO_BREAKER_TIMEOUT",
		"MCP_ADDR", "MCP_AUTH_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ordo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 56.0, cfg.RowHeight)
	assert.InDelta(t, 56.0/3.0, cfg.SwapThreshold(), 1e-9)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "ordo", cfg.RedisPrefix)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("ORDO_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("ORDO_PAGE_SIZE", "25")
	t.Setenv("ORDO_ROW_HEIGHT", "48")
	t.Setenv("ORDO_SWAP_FRACTION", "0.5")
	t.Setenv("ORDO_BREAKER_ENABLED", "false")
	t.Setenv("ORDO_BREAKER_TIMEOUT", "5s")
	t.Setenv("MCP_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 24.0, cfg.SwapThreshold())
	assert.False(t, cfg.BreakerEnabled)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "secret", cfg.MCPAuthToken)
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDO_PAGE_SIZE", "many")
	t.Setenv("ORDO_BREAKER_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestLoadFile(t *testing.T) {
	t.Run("file values apply and env wins", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, `
store = "postgres"
database_url = "postgres://ordo@localhost/ordo"
page_size = 20
breaker_timeout = "1m"
log_format = "json"
`)
		t.Setenv("ORDO_PAGE_SIZE", "30")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, StorePostgres, cfg.Store)
		assert.Equal(t, "postgres://ordo@localhost/ordo", cfg.DatabaseURL)
		assert.Equal(t, 30, cfg.PageSize)
		assert.Equal(t, time.Minute, cfg.BreakerTimeout)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 56.0, cfg.RowHeight)
	})

	t.Run("ORDO_CONFIG is honored by Load", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ORDO_CONFIG", writeFile(t, `page_size = 7`))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.PageSize)
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("path with shell characters", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFile(writeFile(t, `page_size = 3`) + ";true")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forbidden character")
	})

	t.Run("malformed file", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadFile(writeFile(t, `page_size = = 3`))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "page size zero", mutate: func(c *Config) { c.PageSize = 0 }, errMsg: "page size"},
		{name: "page size too large", mutate: func(c *Config) { c.PageSize = 101 }, errMsg: "page size"},
		{name: "non-positive row height", mutate: func(c *Config) { c.RowHeight = 0 }, errMsg: "row height"},
		{name: "swap fraction above one", mutate: func(c *Config) { c.SwapFraction = 1.5 }, errMsg: "swap fraction"},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "mongo" }, errMsg: "unknown store"},
		{name: "postgres without url", mutate: func(c *Config) { c.Store = StorePostgres }, errMsg: "DATABASE_URL"},
		{name: "redis without url", mutate: func(c *Config) { c.Store = StoreRedis }, errMsg: "REDIS_URL"},
		{name: "breaker without failures", mutate: func(c *Config) { c.BreakerFailures = 0 }, errMsg: "breaker failures"},
		{
			name:   "disabled breaker skips its checks",
			mutate: func(c *Config) { c.BreakerEnabled = false; c.BreakerFailures = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDO_PAGE_SIZE", "500")

	_, err := Load()
	assert.ErrorContains(t, err, "page size")
}
