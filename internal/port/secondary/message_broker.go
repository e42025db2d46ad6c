package secondary

import "context"

// OutboundMessage is a fully-formed message ready for broker delivery,
// with every AMQP-level property a durable publish needs already set.
type OutboundMessage struct {
	Exchange      string
	RoutingKey    string
	MessageID     string
	CorrelationID string // equals transaction_id
	ContentType   string
	Persistent    bool
	Priority      uint8
	Expiration    string // milliseconds, per AMQP wire convention
	Headers       map[string]any
	Body          []byte
}

// Publisher is the secondary port for delivering a staged outbox row to
// the broker.
type Publisher interface {
	Publish(ctx context.Context, msg OutboundMessage) error
	Close() error
}

// Delivery is an inbound broker message handed to the consumer dispatcher.
type Delivery struct {
	Body          []byte
	MessageID     string
	CorrelationID string
	Headers       map[string]any
	Redelivered   bool

	// Ack/Nack settle the delivery. Requeue controls whether a nack is
	// requeued (retryable, broker redelivery) or routed to the DLQ
	// (non-retryable).
	Ack  func() error
	Nack func(requeue bool) error
}

// HandlerFunc processes one inbound delivery and returns an error to
// signal nack/requeue semantics; see DispatchOutcome.
type HandlerFunc func(ctx context.Context, d Delivery) error

// Consumer is the secondary port for subscribing to a queue with a
// bounded number of concurrent workers.
type Consumer interface {
	// Consume runs handler over deliveries from queue with the given
	// concurrency and prefetch, blocking until ctx is cancelled. In-flight
	// deliveries are settled (ack or nack) before Consume returns.
	Consume(ctx context.Context, queue string, concurrency, prefetch int, handler HandlerFunc) error
	Close() error
}

// Topology declares the fixed exchange/queue/DLQ layout this service
// depends on; it is provisioned once at service startup.
type Topology interface {
	Declare(ctx context.Context) error
}
