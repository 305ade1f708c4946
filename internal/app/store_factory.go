package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/ordo/internal/shared/application"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
	"github.com/felixgeelhaar/ordo/internal/tasklist/infrastructure/persistence"
	"github.com/felixgeelhaar/ordo/pkg/config"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

// StoreBundle is a task store together with the resources it holds open.
type StoreBundle struct {
	Store       task.Store
	UnitOfWork  application.UnitOfWork
	DBConn      database.Connection
	RedisClient *redis.Client
	Breaker     *persistence.ResilientTaskStore
}

// StoreFactory builds the task store selected by configuration.
type StoreFactory struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewStoreFactory creates a new store factory.
func NewStoreFactory(cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) *StoreFactory {
	return &StoreFactory{
		cfg:     cfg,
		logger:  observability.LoggerOrDefault(logger),
		metrics: observability.OrNoop(metrics),
	}
}

// TaskStore opens the configured backend and, when enabled, wraps it in a
// circuit breaker.
func (f *StoreFactory) TaskStore(ctx context.Context) (*StoreBundle, error) {
	var (
		bundle *StoreBundle
		err    error
	)

	switch f.cfg.Store {
	case config.StoreSQLite:
		bundle, err = f.sqlStore(ctx, database.Config{
			Driver:     database.DriverSQLite,
			SQLitePath: f.cfg.SQLitePath,
		})
	case config.StorePostgres:
		bundle, err = f.sqlStore(ctx, database.Config{
			Driver: database.DriverPostgres,
			URL:    f.cfg.DatabaseURL,
		})
	case config.StoreRedis:
		bundle, err = f.redisStore(ctx)
	default:
		return nil, fmt.Errorf("unsupported store: %s", f.cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	if f.cfg.BreakerEnabled {
		bundle.Breaker = persistence.NewResilientTaskStore(bundle.Store, persistence.BreakerConfig{
			FailureThreshold: uint32(f.cfg.BreakerFailures),
			Timeout:          f.cfg.BreakerTimeout,
			MaxRequests:      1,
		}, f.logger, f.metrics)
		bundle.Store = bundle.Breaker
	}

	return bundle, nil
}

func (f *StoreFactory) sqlStore(ctx context.Context, dbCfg database.Config) (*StoreBundle, error) {
	conn, err := database.Open(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	f.logger.Info("running migrations", "driver", conn.Driver())
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	f.logger.Info("connected to database", "driver", conn.Driver())

	store := persistence.NewSQLTaskStore(conn)
	return &StoreBundle{
		Store:      store,
		UnitOfWork: store.UnitOfWork(),
		DBConn:     conn,
	}, nil
}

func (f *StoreFactory) redisStore(ctx context.Context) (*StoreBundle, error) {
	opt, err := redis.ParseURL(f.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	f.logger.Info("connected to Redis", "prefix", f.cfg.RedisPrefix)

	return &StoreBundle{
		Store:       persistence.NewRedisTaskStore(client, f.cfg.RedisPrefix),
		RedisClient: client,
	}, nil
}
