package amqpbroker

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// Consumer implements secondary.Consumer over RabbitMQ: one channel per
// Consume call, QoS prefetch, and a pool of goroutines pulling off the
// same delivery channel.
type Consumer struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

// NewConsumer constructs a Consumer bound to conn.
func NewConsumer(conn *amqp.Connection, logger *zap.Logger) *Consumer {
	return &Consumer{conn: conn, logger: logger.Named("amqp_consumer")}
}

var _ secondary.Consumer = (*Consumer)(nil)

func (c *Consumer) Consume(ctx context.Context, queue string, concurrency, prefetch int, handler secondary.HandlerFunc) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("opening consume channel for %s: %w", queue, err)
	}
	defer ch.Close()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("setting QoS on %s: %w", queue, err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consuming %s: %w", queue, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			c.workerLoop(ctx, queue, worker, deliveries, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (c *Consumer) workerLoop(ctx context.Context, queue string, worker int, deliveries <-chan amqp.Delivery, handler secondary.HandlerFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handle(ctx, queue, d, handler)
		}
	}
}

// handle hands the delivery to handler, which is solely responsible for
// settling it: the classification that decides
// ack/nack-requeue/nack-no-requeue lives in the dispatch pipeline, not
// here. A returned error means the handler could not settle the
// delivery itself — as a last resort this nacks with requeue so the
// message is not silently dropped.
func (c *Consumer) handle(ctx context.Context, queue string, d amqp.Delivery, handler secondary.HandlerFunc) {
	headers := make(map[string]any, len(d.Headers))
	for k, v := range d.Headers {
		headers[k] = v
	}

	delivery := secondary.Delivery{
		Body:          d.Body,
		MessageID:     d.MessageId,
		CorrelationID: d.CorrelationId,
		Headers:       headers,
		Redelivered:   d.Redelivered,
		Ack:           func() error { return d.Ack(false) },
		Nack:          func(requeue bool) error { return d.Nack(false, requeue) },
	}

	if err := handler(ctx, delivery); err != nil {
		c.logger.Error("handler failed to settle delivery, requeuing",
			zap.String("queue", queue), zap.String("message_id", d.MessageId), zap.Error(err))
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("nack failed", zap.Error(nackErr))
		}
	}
}

func (c *Consumer) Close() error { return nil }
