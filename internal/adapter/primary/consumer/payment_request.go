// Package consumer implements the inbound dispatch pipeline:
// deserialize, validate, deduplicate, route, and settle.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/metrics"
	"github.com/orderflow/orderflow/internal/port/primary"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// PaymentRequestHandler dispatches payment.request.queue deliveries to
// primary.PaymentService.
type PaymentRequestHandler struct {
	payments primary.PaymentService
	dedup    secondary.DedupCache
	logger   *zap.Logger
}

// NewPaymentRequestHandler constructs a PaymentRequestHandler.
func NewPaymentRequestHandler(payments primary.PaymentService, dedup secondary.DedupCache, logger *zap.Logger) *PaymentRequestHandler {
	return &PaymentRequestHandler{payments: payments, dedup: dedup, logger: logger.Named("payment_request_handler")}
}

// Handle implements secondary.HandlerFunc.
func (h *PaymentRequestHandler) Handle(ctx context.Context, d secondary.Delivery) error {
	seen, err := h.dedup.SeenMessage(ctx, d.CorrelationID, d.MessageID)
	if err != nil {
		h.logger.Warn("dedup cache unavailable, falling through to the database check", zap.Error(err))
	} else if seen {
		h.logger.Info("dropping duplicate delivery", zap.String("transaction_id", d.CorrelationID), zap.String("message_id", d.MessageID))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "ack").Inc()
		return d.Ack()
	}

	var body entity.PaymentRequestedBody
	if err := json.Unmarshal(d.Body, &body); err != nil {
		h.logger.Warn("malformed payment request body, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "nack_dlq").Inc()
		return d.Nack(false)
	}

	if err := validatePaymentRequested(body); err != nil {
		h.logger.Warn("invalid payment request, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "nack_dlq").Inc()
		return d.Nack(false)
	}

	err = h.payments.HandlePaymentRequest(ctx, body)
	switch {
	case err == nil:
		if markErr := h.dedup.MarkSeen(ctx, d.CorrelationID, d.MessageID); markErr != nil {
			h.logger.Warn("failed to record dedup entry", zap.Error(markErr))
		}
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "ack").Inc()
		return d.Ack()
	case isNonRetryable(err):
		h.logger.Warn("non-retryable payment request error, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "nack_dlq").Inc()
		return d.Nack(false)
	default:
		h.logger.Error("transient error handling payment request, requeuing", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentRequestQueue, "nack_requeue").Inc()
		return d.Nack(true)
	}
}

func validatePaymentRequested(body entity.PaymentRequestedBody) error {
	if body.OrderID == "" || body.TransactionID == "" || body.CustomerID == "" {
		return fmt.Errorf("%w: order id, transaction id and customer id are required", domain.ErrValidation)
	}
	if body.Amount == "" || body.Currency == "" {
		return fmt.Errorf("%w: amount and currency are required", domain.ErrValidation)
	}
	if body.Card.Number == "" {
		return fmt.Errorf("%w: card number is required", domain.ErrValidation)
	}
	return nil
}

func isNonRetryable(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrIllegalState) ||
		errors.Is(err, domain.ErrTransactionMismatch) ||
		errors.Is(err, domain.ErrDuplicateTransaction)
}
