package amqpbroker

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// Publisher implements secondary.Publisher over a dedicated AMQP
// channel with publisher confirms enabled, so the outbox publisher
// only marks a row processed once the broker has actually
// accepted it.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher opens a confirm-mode channel on conn.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening publish channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enabling publisher confirms: %w", err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

var _ secondary.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, msg secondary.OutboundMessage) error {
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}

	deliveryMode := uint8(amqp.Transient)
	if msg.Persistent {
		deliveryMode = amqp.Persistent
	}

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, msg.Exchange, msg.RoutingKey, true, false, amqp.Publishing{
		ContentType:   orDefault(msg.ContentType, "application/json"),
		DeliveryMode:  deliveryMode,
		MessageId:     msg.MessageID,
		CorrelationId: msg.CorrelationID,
		Timestamp:     time.Now(),
		Headers:       headers,
		Expiration:    msg.Expiration,
		Priority:      msg.Priority,
		Body:          msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%w: publishing to %s: %v", domain.ErrTransient, msg.Exchange, err)
	}
	if confirm == nil {
		return nil
	}
	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: waiting for broker confirm: %v", domain.ErrTransient, err)
	}
	if !ok {
		return fmt.Errorf("%w: broker nacked publish to %s", domain.ErrTransient, msg.Exchange)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
