// Package worker hosts the two long-running background loops that never
// respond to a client request directly: the outbox publisher and the
// payment retry scheduler.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/metrics"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// OutboxPublisher drains staged outbox rows to the broker on three
// independent tickers: Drain (fresh rows), Retry (backed-off rows), and
// Cleanup (retention sweep).
type OutboxPublisher struct {
	outbox    secondary.OutboxRepository
	publisher secondary.Publisher
	logger    *zap.Logger

	batchSize          int
	maxRetries         int
	backoffCap         time.Duration
	retentionProcessed time.Duration
	retentionFailed    time.Duration

	drainInterval   time.Duration
	retryInterval   time.Duration
	cleanupInterval time.Duration
}

// Config bundles the publisher's tunables.
type Config struct {
	BatchSize          int
	MaxRetries         int
	BackoffCap         time.Duration
	RetentionProcessed time.Duration
	RetentionFailed    time.Duration
	DrainInterval      time.Duration
	RetryInterval      time.Duration
	CleanupInterval    time.Duration
}

// NewOutboxPublisher constructs an OutboxPublisher.
func NewOutboxPublisher(outbox secondary.OutboxRepository, publisher secondary.Publisher, logger *zap.Logger, cfg Config) *OutboxPublisher {
	return &OutboxPublisher{
		outbox:             outbox,
		publisher:          publisher,
		logger:             logger.Named("outbox_publisher"),
		batchSize:          cfg.BatchSize,
		maxRetries:         cfg.MaxRetries,
		backoffCap:         cfg.BackoffCap,
		retentionProcessed: cfg.RetentionProcessed,
		retentionFailed:    cfg.RetentionFailed,
		drainInterval:      cfg.DrainInterval,
		retryInterval:      cfg.RetryInterval,
		cleanupInterval:    cfg.CleanupInterval,
	}
}

// Run blocks, ticking the three loops until ctx is cancelled.
func (p *OutboxPublisher) Run(ctx context.Context) {
	drainTicker := time.NewTicker(p.drainInterval)
	retryTicker := time.NewTicker(p.retryInterval)
	cleanupTicker := time.NewTicker(p.cleanupInterval)
	defer drainTicker.Stop()
	defer retryTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-drainTicker.C:
			p.drain(ctx)
		case <-retryTicker.C:
			p.retry(ctx)
		case <-cleanupTicker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxPublisher) drain(ctx context.Context) {
	rows, err := p.outbox.ClaimDrainBatch(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("claiming drain batch", zap.Error(err))
		return
	}
	p.publishBatch(ctx, rows)
}

func (p *OutboxPublisher) retry(ctx context.Context) {
	rows, err := p.outbox.ClaimRetryBatch(ctx, p.maxRetries, p.backoffCap, p.batchSize, time.Now())
	if err != nil {
		p.logger.Error("claiming retry batch", zap.Error(err))
		return
	}
	p.publishBatch(ctx, rows)
}

func (p *OutboxPublisher) publishBatch(ctx context.Context, rows []*entity.OutboxEvent) {
	if len(rows) == 0 {
		return
	}
	timer := prometheus.NewTimer(metrics.OutboxPublishDuration)
	defer timer.ObserveDuration()

	for _, row := range rows {
		msg, err := toOutboundMessage(row)
		if err != nil {
			p.logger.Error("building outbound message", zap.String("event_id", row.EventID), zap.Error(err))
			p.markFailed(ctx, row, err)
			continue
		}

		if err := p.publisher.Publish(ctx, msg); err != nil {
			p.logger.Warn("publish failed, will retry", zap.String("event_id", row.EventID), zap.Error(err))
			p.markFailed(ctx, row, err)
			continue
		}

		if err := p.outbox.MarkProcessed(ctx, row.EventID, row.Version, time.Now()); err != nil {
			p.logger.Error("marking event processed", zap.String("event_id", row.EventID), zap.Error(err))
		}
		metrics.OutboxEventsProcessed.WithLabelValues(string(row.EventType)).Inc()
	}
}

func (p *OutboxPublisher) markFailed(ctx context.Context, row *entity.OutboxEvent, cause error) {
	if err := p.outbox.MarkFailed(ctx, row.EventID, row.Version, cause.Error()); err != nil {
		p.logger.Error("recording publish failure", zap.String("event_id", row.EventID), zap.Error(err))
	}
	metrics.OutboxEventsFailed.WithLabelValues(string(row.EventType)).Inc()
	// row.RetryCount is the count before MarkFailed's increment.
	if row.RetryCount+1 >= p.maxRetries {
		p.logger.Error("outbox event exhausted retry budget", zap.String("event_id", row.EventID), zap.String("event_type", string(row.EventType)))
		metrics.OutboxEventsPoisoned.WithLabelValues(string(row.EventType)).Inc()
	}
}

func (p *OutboxPublisher) cleanup(ctx context.Context) {
	now := time.Now()
	processedDeleted, err := p.outbox.DeleteProcessedOlderThan(ctx, now.Add(-p.retentionProcessed))
	if err != nil {
		p.logger.Error("cleaning processed outbox rows", zap.Error(err))
	} else if processedDeleted > 0 {
		p.logger.Info("swept processed outbox rows", zap.Int64("count", processedDeleted))
	}

	poisonDeleted, err := p.outbox.DeletePoisonOlderThan(ctx, p.maxRetries, now.Add(-p.retentionFailed))
	if err != nil {
		p.logger.Error("cleaning poison outbox rows", zap.Error(err))
	} else if poisonDeleted > 0 {
		p.logger.Info("swept poison outbox rows", zap.Int64("count", poisonDeleted))
	}
}

// toOutboundMessage maps a staged event to its wire envelope: exchange
// and routing key per flow, headers, priority.
func toOutboundMessage(row *entity.OutboxEvent) (secondary.OutboundMessage, error) {
	exchange, routingKey, priority, err := routeFor(row.EventType)
	if err != nil {
		return secondary.OutboundMessage{}, err
	}
	if row.EventType == entity.EventPaymentConfirmation {
		var body entity.PaymentConfirmationBody
		if err := json.Unmarshal(row.Payload, &body); err == nil && body.Status == "FAILED" {
			priority = 5
		}
	}

	headers := map[string]any{
		"eventType":     string(row.EventType),
		"orderId":       row.OrderID,
		"transactionId": row.TransactionID,
		"source":        "orderflow",
		"version":       1,
	}
	if row.CustomerID != "" {
		headers["customerId"] = row.CustomerID
	}

	return secondary.OutboundMessage{
		Exchange:      exchange,
		RoutingKey:    routingKey,
		MessageID:     uuid.NewString(),
		CorrelationID: row.TransactionID,
		ContentType:   "application/json",
		Persistent:    true,
		Priority:      priority,
		Expiration:    "1800000",
		Headers:       headers,
		Body:          row.Payload,
	}, nil
}

// routeFor maps an event type to its exchange, routing key, and publish
// priority: 5 for PaymentFailed, else 1. toOutboundMessage raises a
// PaymentConfirmation whose status is FAILED to priority 5.
// PaymentConfirmed/PaymentFailed are order-domain notifications with no
// in-system consumer queue bound to them in this module's topology; they
// still publish to order.exchange for any external subscriber.
func routeFor(eventType entity.EventType) (exchange, routingKey string, priority uint8, err error) {
	switch eventType {
	case entity.EventPaymentRequested:
		return amqpbroker.PaymentExchange, amqpbroker.RoutingPaymentRequest, 1, nil
	case entity.EventPaymentConfirmation:
		return amqpbroker.PaymentExchange, amqpbroker.RoutingPaymentConfirmation, 1, nil
	case entity.EventPaymentConfirmed:
		return amqpbroker.OrderExchange, "order.payment.confirmed", 1, nil
	case entity.EventPaymentFailed:
		return amqpbroker.OrderExchange, "order.payment.failed", 5, nil
	default:
		return "", "", 0, fmt.Errorf("%w: unknown event type %q", domain.ErrValidation, eventType)
	}
}
