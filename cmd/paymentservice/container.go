package main

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httphandler "github.com/orderflow/orderflow/internal/adapter/primary/http"
	"github.com/orderflow/orderflow/internal/adapter/primary/consumer"
	"github.com/orderflow/orderflow/internal/adapter/primary/worker"
	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/adapter/secondary/gateway"
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
		return logging.New(cfg.Environment, cfg.LogLevel, "paymentservice")
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
	if err := c.Provide(postgres.NewPaymentRepository); err != nil {
		return nil, err
	}
	if err := c.Provide(func(r *postgres.PaymentRepository) secondary.PaymentRepository { return r }); err != nil {
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

	// --- Gateway ---
	if err := c.Provide(func(clk clock.Clock) secondary.PaymentGateway { return gateway.NewSimulator(clk) }); err != nil {
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
	if err := c.Provide(service.NewPaymentService); err != nil {
		return nil, err
	}
	if err := c.Provide(func(s *service.PaymentService) primary.PaymentService { return s }); err != nil {
		return nil, err
	}

	// --- Primary adapters ---
	if err := c.Provide(func(
		payments primary.PaymentService,
		outbox secondary.OutboxRepository,
		checks []secondary.HealthChecker,
		cfg *config.Config,
	) httphandler.Routes {
		return httphandler.Routes{
			Payments:     payments,
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

	if err := c.Provide(func(payments primary.PaymentService, dedup secondary.DedupCache, logger *zap.Logger) *consumer.PaymentRequestHandler {
		return consumer.NewPaymentRequestHandler(payments, dedup, logger)
	}); err != nil {
		return nil, err
	}

	return c, nil
}
