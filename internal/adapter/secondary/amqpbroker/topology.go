// Package amqpbroker adapts the message broker ports onto RabbitMQ via
// amqp091-go, implementing the fixed exchange/queue/DLQ layout this
// system runs on.
package amqpbroker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// Queue TTL/length bounds and exchange/queue/routing-key names.
const (
	PaymentExchange = "payment.exchange"
	OrderExchange   = "order.exchange"
	PaymentDLX      = "payment.dlx"

	PaymentRequestQueue      = "payment.request.queue"
	PaymentConfirmationQueue = "payment.confirmation.queue"
	PaymentRequestDLQ        = "payment.request.dlq"
	PaymentConfirmationDLQ   = "payment.confirmation.dlq"

	RoutingPaymentRequest            = "payment.request"
	RoutingPaymentConfirmation       = "payment.confirmation"
	RoutingPaymentRequestFailed      = "payment.request.failed"
	RoutingPaymentConfirmationFailed = "payment.confirmation.failed"

	queueTTLMillis = 3_600_000
	queueMaxLength = 10_000
)

// Topology declares the broker-side layout. It is idempotent: declaring
// an already-declared topology is a no-op on the broker.
type Topology struct {
	ch *amqp.Channel
}

// NewTopology constructs a Topology bound to an open channel.
func NewTopology(ch *amqp.Channel) *Topology {
	return &Topology{ch: ch}
}

var _ secondary.Topology = (*Topology)(nil)

func (t *Topology) Declare(ctx context.Context) error {
	if err := t.ch.ExchangeDeclare(PaymentExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring %s: %w", PaymentExchange, err)
	}
	if err := t.ch.ExchangeDeclare(OrderExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring %s: %w", OrderExchange, err)
	}
	if err := t.ch.ExchangeDeclare(PaymentDLX, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring %s: %w", PaymentDLX, err)
	}

	if err := t.declareFlow(PaymentRequestQueue, PaymentRequestDLQ, RoutingPaymentRequest, RoutingPaymentRequestFailed, PaymentExchange); err != nil {
		return err
	}
	if err := t.declareFlow(PaymentConfirmationQueue, PaymentConfirmationDLQ, RoutingPaymentConfirmation, RoutingPaymentConfirmationFailed, PaymentExchange); err != nil {
		return err
	}
	return nil
}

// declareFlow wires one queue (durable, TTL-bounded, length-bounded,
// dead-lettering on negative-ack into PaymentDLX) plus its matching DLQ.
// The queue is bound to exchange under routingKey; the DLQ is bound to
// PaymentDLX under failedRoutingKey.
func (t *Topology) declareFlow(queue, dlq, routingKey, failedRoutingKey, exchange string) error {
	args := amqp.Table{
		"x-message-ttl":             int32(queueTTLMillis),
		"x-max-length":              int32(queueMaxLength),
		"x-dead-letter-exchange":    PaymentDLX,
		"x-dead-letter-routing-key": failedRoutingKey,
	}
	if _, err := t.ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declaring queue %s: %w", queue, err)
	}
	if err := t.ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue %s: %w", queue, err)
	}

	if _, err := t.ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring dlq %s: %w", dlq, err)
	}
	if err := t.ch.QueueBind(dlq, failedRoutingKey, PaymentDLX, false, nil); err != nil {
		return fmt.Errorf("binding dlq %s: %w", dlq, err)
	}
	return nil
}
