package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/ordo/internal/shared/application"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/ordo/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/drag"
	"github.com/felixgeelhaar/ordo/internal/tasklist/application/synchronizer"
	"github.com/felixgeelhaar/ordo/internal/tasklist/domain/task"
	"github.com/felixgeelhaar/ordo/internal/tasklist/infrastructure/persistence"
	"github.com/felixgeelhaar/ordo/pkg/config"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics

	// Storage
	DBConn      database.Connection
	RedisClient *redis.Client
	Store       task.Store
	Breaker     *persistence.ResilientTaskStore
	UnitOfWork  application.UnitOfWork

	// Events
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus

	// Task list
	Synchronizer *synchronizer.Synchronizer
	EditDialog   *synchronizer.EditDialog
	Drag         *drag.Session
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	logger = observability.LoggerOrDefault(logger)
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	bundle, err := NewStoreFactory(cfg, logger, c.Metrics).TaskStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Store = bundle.Store
	c.Breaker = bundle.Breaker
	c.UnitOfWork = bundle.UnitOfWork
	c.DBConn = bundle.DBConn
	c.RedisClient = bundle.RedisClient

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.Synchronizer = synchronizer.New(c.Store, synchronizer.Options{
		PageSize:   cfg.PageSize,
		UnitOfWork: c.UnitOfWork,
		Publisher:  c.EventPublisher,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	c.EditDialog = synchronizer.NewEditDialog(c.Synchronizer)
	c.Drag = drag.NewSession(c.Synchronizer, cfg.SwapThreshold())

	logger.Info("task list ready",
		"store", cfg.Store,
		"page_size", c.Synchronizer.PageSize(),
		"swap_threshold", c.Drag.Threshold(),
	)

	return c, nil
}

// initPublisher connects to RabbitMQ when configured. Without it, or when
// the broker is unreachable in development, events go to an in-process bus
// that logs them.
func (c *Container) initPublisher() error {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
			return nil
		}
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
	}

	c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
	c.InProcessEventBus.RegisterConsumer(eventbus.NewLogConsumer(c.Logger))
	c.EventPublisher = c.InProcessEventBus
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Debug("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBConn.Driver())
		}
	}
}
