package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/security"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string `toml:"app_env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	// Storage
	Store       string `toml:"store"`
	DatabaseURL string `toml:"database_url"`
	SQLitePath  string `toml:"sqlite_path"`
	RedisURL    string `toml:"redis_url"`
	RedisPrefix string `toml:"redis_prefix"`

	// Events
	RabbitMQURL string `toml:"rabbitmq_url"`

	// Task list
	PageSize     int     `toml:"page_size"`
	RowHeight    float64 `toml:"row_height"`
	SwapFraction float64 `toml:"swap_fraction"`

	// Circuit breaker around the store
	BreakerEnabled  bool          `toml:"breaker_enabled"`
	BreakerFailures int           `toml:"breaker_failures"`
	BreakerTimeout  time.Duration `toml:"breaker_timeout"`

	// MCP
	MCPAddr      string `toml:"mcp_addr"`
	MCPAuthToken string `toml:"mcp_auth_token"`
}

// Default returns the built-in configuration: a local SQLite store, pages of
// ten and a swap threshold of a third of a 56-unit row.
func Default() *Config {
	return &Config{
		AppEnv:          "development",
		LogLevel:        "info",
		LogFormat:       "text",
		Store:           StoreSQLite,
		RedisPrefix:     "ordo",
		PageSize:        10,
		RowHeight:       56,
		SwapFraction:    1.0 / 3.0,
		BreakerEnabled:  true,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		MCPAddr:         "127.0.0.1:8082",
	}
}

// Load reads .env, then the TOML file named by ORDO_CONFIG (if any), then
// environment variables. Later sources win.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()
	return LoadFile(os.Getenv("ORDO_CONFIG"))
}

// LoadFile is Load with an explicit TOML file path; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := security.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	cfg.Store = getEnv("ORDO_STORE", cfg.Store)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = getEnv("ORDO_SQLITE_PATH", cfg.SQLitePath)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisPrefix = getEnv("ORDO_REDIS_PREFIX", cfg.RedisPrefix)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)

	cfg.PageSize = getIntEnv("ORDO_PAGE_SIZE", cfg.PageSize)
	cfg.RowHeight = getFloatEnv("ORDO_ROW_HEIGHT", cfg.RowHeight)
	cfg.SwapFraction = getFloatEnv("ORDO_SWAP_FRACTION", cfg.SwapFraction)

	cfg.BreakerEnabled = getBoolEnv("ORDO_BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerFailures = getIntEnv("ORDO_BREAKER_FAILURES", cfg.BreakerFailures)
	cfg.BreakerTimeout = getDurationEnv("ORDO_BREAKER_TIMEOUT", cfg.BreakerTimeout)

	cfg.MCPAddr = getEnv("MCP_ADDR", cfg.MCPAddr)
	cfg.MCPAuthToken = getEnv("MCP_AUTH_TOKEN", cfg.MCPAuthToken)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and out-of-range tunables.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want sqlite, postgres or redis)", c.Store))
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize))
	}
	if c.RowHeight <= 0 {
		errs = append(errs, fmt.Errorf("row height must be positive, got %g", c.RowHeight))
	}
	if c.SwapFraction <= 0 || c.SwapFraction > 1 {
		errs = append(errs, fmt.Errorf("swap fraction must be in (0, 1], got %g", c.SwapFraction))
	}
	if c.BreakerEnabled {
		if c.BreakerFailures < 1 {
			errs = append(errs, fmt.Errorf("breaker failures must be at least 1, got %d", c.BreakerFailures))
		}
		if c.BreakerTimeout <= 0 {
			errs = append(errs, fmt.Errorf("breaker timeout must be positive, got %s", c.BreakerTimeout))
		}
	}

	return errors.Join(errs...)
}

// SwapThreshold is the drag distance that moves a row by one slot.
func (c *Config) SwapThreshold() float64 {
	return c.RowHeight * c.SwapFraction
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
