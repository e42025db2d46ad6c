package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/adapter/secondary/amqpbroker"
	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/metrics"
	"github.com/orderflow/orderflow/internal/port/primary"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// PaymentConfirmationHandler dispatches payment.confirmation.queue
// deliveries to primary.OrderService. It relies on the order aggregate's
// own transaction-id guard for deduplication, so
// unlike PaymentRequestHandler it does not consult the fast-path cache
// before routing — every delivery reaches the database, and a stale one
// is dropped there via ApplyPaymentConfirmation's audit path.
type PaymentConfirmationHandler struct {
	orders primary.OrderService
	logger *zap.Logger
}

// NewPaymentConfirmationHandler constructs a PaymentConfirmationHandler.
func NewPaymentConfirmationHandler(orders primary.OrderService, logger *zap.Logger) *PaymentConfirmationHandler {
	return &PaymentConfirmationHandler{orders: orders, logger: logger.Named("payment_confirmation_handler")}
}

// Handle implements secondary.HandlerFunc.
func (h *PaymentConfirmationHandler) Handle(ctx context.Context, d secondary.Delivery) error {
	var body entity.PaymentConfirmationBody
	if err := json.Unmarshal(d.Body, &body); err != nil {
		h.logger.Warn("malformed payment confirmation body, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentConfirmationQueue, "nack_dlq").Inc()
		return d.Nack(false)
	}

	if err := validatePaymentConfirmation(body); err != nil {
		h.logger.Warn("invalid payment confirmation, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentConfirmationQueue, "nack_dlq").Inc()
		return d.Nack(false)
	}

	err := h.orders.ApplyPaymentConfirmation(ctx, body)
	switch {
	case err == nil:
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentConfirmationQueue, "ack").Inc()
		return d.Ack()
	case isNonRetryable(err):
		h.logger.Warn("non-retryable payment confirmation error, routing to DLQ", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentConfirmationQueue, "nack_dlq").Inc()
		return d.Nack(false)
	default:
		h.logger.Error("transient error applying payment confirmation, requeuing", zap.Error(err))
		metrics.ConsumerDeliveries.WithLabelValues(amqpbroker.PaymentConfirmationQueue, "nack_requeue").Inc()
		return d.Nack(true)
	}
}

func validatePaymentConfirmation(body entity.PaymentConfirmationBody) error {
	if body.OrderID == "" || body.TransactionID == "" {
		return fmt.Errorf("%w: order id and transaction id are required", domain.ErrValidation)
	}
	switch body.Status {
	case "SUCCESS":
		if body.PaymentID == "" {
			return fmt.Errorf("%w: payment id is required for a SUCCESS confirmation", domain.ErrValidation)
		}
	case "FAILED":
		if body.ErrorMessage == "" {
			return fmt.Errorf("%w: error message is required for a FAILED confirmation", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown confirmation status %q", domain.ErrValidation, body.Status)
	}
	return nil
}
