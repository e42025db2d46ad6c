package amqpbroker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// Dial opens a connection and declares the fixed topology against it.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening topology channel: %w", err)
	}
	defer ch.Close()

	if err := NewTopology(ch).Declare(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// HealthCheck reports broker connectivity via secondary.HealthChecker.
type HealthCheck struct {
	conn *amqp.Connection
}

// NewHealthCheck constructs a HealthCheck bound to conn.
func NewHealthCheck(conn *amqp.Connection) *HealthCheck {
	return &HealthCheck{conn: conn}
}

var _ secondary.HealthChecker = (*HealthCheck)(nil)

func (h *HealthCheck) Name() string { return "rabbitmq" }

func (h *HealthCheck) Check(ctx context.Context) error {
	if h.conn == nil || h.conn.IsClosed() {
		return fmt.Errorf("broker connection is closed")
	}
	return nil
}
