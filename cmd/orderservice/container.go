package main

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httphandler "github.com/orderflow/orderflow/internal/adapter/primary/http"
	"github.com/orderflow/orderflow/internal/adapter/primary/consumer"
	"github.com/orderflow/orderflow/internal/adapter/primary/worker"
	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/adapter/secondary/postgres"
	"github.com/orderflow/orderflow/internal/adapter/secondary/redisstore"
	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/config"
	"github.com/orderflow/orderflow/internal/domain/service"
	"github.com/orderflow/orderflow/internal/logging"
	"github.com/orderflow/orderflow/internal/port/primary"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

func buildContainer(ctx context.Context) (*dig.Container, error) {
	c := dig.New()

	if err := c.Provide(config.New); err != nil {
		return nil, err
	}
	if err := c.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		return logging.New(cfg.Environment, cfg.LogLevel, "orderservice")
	}); err != nil {
		return nil, err
	}

	// --- Postgres ---
	if err := c.Provide(func(cfg *config.Config) (*gorm.DB, error) {
		return postgres.Connect(cfg.PostgresDSN)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewUnitOfWork); err != nil {
		return nil, err
	}
	if err := c.Provide(func(uow *postgres.UnitOfWork) secondary.UnitOfWork { return uow }); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewOrderRepository); err != nil {
		return nil, err
	}
	if err := c.Provide(func(r *postgres.OrderRepository) secondary.OrderRepository { return r }); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewRetryHistoryRepository); err != nil {
		return nil, err
	}
	if err := c.Provide(func(r *postgres.RetryHistoryRepository) secondary.RetryHistoryRepository { return r }); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewAuditRepository); err != nil {
		return nil, err
	}
	if err := c.Provide(func(r *postgres.AuditRepository) secondary.AuditRepository { return r }); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewOutboxRepository); err != nil {
		return nil, err
	}
	if err := c.Provide(func(r *postgres.OutboxRepository) secondary.OutboxRepository { return r }); err != nil {
		return nil, err
	}
	if err := c.Provide(postgres.NewHealthCheck); err != nil {
		return nil, err
	}

	// --- Redis (dedup cache fast path) ---
	if err := c.Provide(func(cfg *config.Config, logger *zap.Logger) (goredis.UniversalClient, error) {
		return redisstore.NewClient(ctx, cfg, logger)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(func(cfg *config.Config, client goredis.UniversalClient) secondary.DedupCache {
		return redisstore.NewDedupCache(client, cfg.DedupCacheTTL)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(redisstore.NewHealthCheck); err != nil {
		return nil, err
	}

	// --- RabbitMQ ---
	if err := c.Provide(func(cfg *config.Config) (*amqp.Connection, error) {
		return amqpbroker.Dial(cfg.AMQPURL)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(func(conn *amqp.Connection) (secondary.Publisher, error) {
		return amqpbroker.NewPublisher(conn)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(amqpbroker.NewConsumer); err != nil {
		return nil, err
	}
	if err := c.Provide(amqpbroker.NewHealthCheck); err != nil {
		return nil, err
	}

	// --- Aggregate health checks ---
	if err := c.Provide(func(pg *postgres.HealthCheck, redis secondary.HealthChecker, broker *amqpbroker.HealthCheck) []secondary.HealthChecker {
		return []secondary.HealthChecker{pg, redis, broker}
	}); err != nil {
		return nil, err
	}

	// --- Clock ---
	if err := c.Provide(func() clock.Clock { return clock.Real{} }); err != nil {
		return nil, err
	}

	// --- Domain services ---
	if err := c.Provide(service.NewOutboxWriter); err != nil {
		return nil, err
	}
	if err := c.Provide(func(
		uow secondary.UnitOfWork,
		orders secondary.OrderRepository,
		retries secondary.RetryHistoryRepository,
		audit secondary.AuditRepository,
		outbox *service.OutboxWriter,
		clk clock.Clock,
		logger *zap.Logger,
		cfg *config.Config,
	) *service.OrderService {
		return service.NewOrderService(uow, orders, retries, audit, outbox, clk, logger, cfg.MaxRetryAttempts, cfg.BaseDelayMinutes)
	}); err != nil {
		return nil, err
	}
	if err := c.Provide(func(s *service.OrderService) primary.OrderService { return s }); err != nil {
		return nil, err
	}
	if err := c.Provide(func(
		uow secondary.UnitOfWork,
		orders secondary.OrderRepository,
		outbox *service.OutboxWriter,
		orderSvc *service.OrderService,
		clk clock.Clock,
		logger *zap.Logger,
		cfg *config.Config,
	) *service.RetryScheduler {
		timeout := time.Duration(cfg.PaymentTimeoutMinutes) * time.Minute
		return service.NewRetryScheduler(uow, orders, outbox, orderSvc, clk, logger, timeout, cfg.RetryScanBatchSize)
	}); err != nil {
		return nil, err
	}

	// --- Primary adapters ---
	if err := c.Provide(func(
		orders primary.OrderService,
		outbox secondary.OutboxRepository,
		checks []secondary.HealthChecker,
		cfg *config.Config,
	) httphandler.Routes {
		return httphandler.Routes{
			Orders:       orders,
			Outbox:       outbox,
			MaxRetries:   cfg.OutboxMaxRetries,
			HealthChecks: checks,
		}
	}); err != nil {
		return nil, err
	}

	if err := c.Provide(func(outbox secondary.OutboxRepository, publisher secondary.Publisher, logger *zap.Logger, cfg *config.Config) *worker.OutboxPublisher {
		return worker.NewOutboxPublisher(outbox, publisher, logger, worker.Config{
			BatchSize:          cfg.OutboxBatchSize,
			MaxRetries:         cfg.OutboxMaxRetries,
			BackoffCap:         cfg.OutboxBackoffCap,
			RetentionProcessed: cfg.OutboxRetentionProcessed,
			RetentionFailed:    cfg.OutboxRetentionFailed,
			DrainInterval:      cfg.OutboxDrainInterval,
			RetryInterval:      cfg.OutboxRetryInterval,
			CleanupInterval:    cfg.OutboxCleanupInterval,
		})
	}); err != nil {
		return nil, err
	}

	if err := c.Provide(func(scheduler *service.RetryScheduler, cfg *config.Config, logger *zap.Logger) *worker.RetryScheduler {
		return worker.NewRetryScheduler(scheduler, cfg.PaymentRetryInterval, logger)
	}); err != nil {
		return nil, err
	}

	if err := c.Provide(func(orders primary.OrderService, logger *zap.Logger) *consumer.PaymentConfirmationHandler {
		return consumer.NewPaymentConfirmationHandler(orders, logger)
	}); err != nil {
		return nil, err
	}

	return c, nil
}
