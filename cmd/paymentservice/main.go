// Command paymentservice runs the payment-side HTTP API, its outbox
// publisher, and the payment.request.queue consumer.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httphandler "github.com/orderflow/orderflow/internal/adapter/primary/http"
	"github.com/orderflow/orderflow/internal/adapter/primary/consumer"
	"github.com/orderflow/orderflow/internal/adapter/primary/worker"
	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/config"
)

const appName = "paymentservice"

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := buildContainer(ctx)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	return c.Invoke(func(
		routes httphandler.Routes,
		outboxWorker *worker.OutboxPublisher,
		requestHandler *consumer.PaymentRequestHandler,
		amqpConsumer *amqpbroker.Consumer,
		cfg *config.Config,
		logger *zap.Logger,
		redisClient goredis.UniversalClient,
		amqpConn *amqp.Connection,
	) {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("error closing redis", zap.Error(err))
			}
			if err := amqpConn.Close(); err != nil {
				logger.Error("error closing amqp connection", zap.Error(err))
			}
			_ = logger.Sync()
		}()

		logger.Info("starting application",
			zap.String("app", appName),
			zap.String("version", version),
			zap.String("environment", cfg.Environment),
			zap.String("http_addr", cfg.HTTPAddr),
		)

		workerCtx, workerCancel := context.WithCancel(ctx)
		defer workerCancel()

		errCh := make(chan error, 2)
		go outboxWorker.Run(workerCtx)
		go func() {
			errCh <- amqpConsumer.Consume(workerCtx, amqpbroker.PaymentRequestQueue, cfg.ConsumerConcurrency, cfg.ConsumerPrefetch, requestHandler.Handle)
		}()

		router := httphandler.NewRouter(routes, logger)
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			if srvErr := server.ListenAndServe(); srvErr != nil && srvErr != http.ErrServerClosed {
				errCh <- fmt.Errorf("http server: %w", srvErr)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		case srvErr := <-errCh:
			if srvErr != nil {
				logger.Error("service error", zap.Error(srvErr))
			}
		}

		logger.Info("shutting down gracefully")
		cancel()
		workerCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", zap.Error(err))
		}
		if err := amqpConsumer.Close(); err != nil {
			logger.Error("amqp consumer shutdown error", zap.Error(err))
		}

		logger.Info("shutdown complete")
	})
}
