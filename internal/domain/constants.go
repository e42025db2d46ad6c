package domain

import "time"

const (
	// DefaultOutboxBatchSize bounds how many outbox rows are drained per tick.
	DefaultOutboxBatchSize = 50

	// DefaultOutboxMaxRetries is the poison threshold for outbox rows.
	DefaultOutboxMaxRetries = 10

	// DefaultRetentionProcessed is how long processed outbox rows survive
	// before the cleanup sweep deletes them.
	DefaultRetentionProcessed = 24 * time.Hour

	// DefaultRetentionFailed is how long poisoned (retries exhausted)
	// outbox rows survive before the cleanup sweep deletes them.
	DefaultRetentionFailed = 7 * 24 * time.Hour

	// OutboxRetryBackoffCap bounds the exponential backoff applied to
	// outbox retry eligibility.
	OutboxRetryBackoffCap = 30 * time.Minute

	// DefaultDrainInterval is the tick period of the outbox Drain loop.
	DefaultDrainInterval = 5 * time.Second

	// DefaultOutboxRetryInterval is the tick period of the outbox Retry loop.
	DefaultOutboxRetryInterval = 30 * time.Second

	// DefaultCleanupInterval is the tick period of the outbox Cleanup loop.
	DefaultCleanupInterval = 1 * time.Hour

	// DefaultPaymentRetryInterval is the tick period of the payment retry scheduler.
	DefaultPaymentRetryInterval = 60 * time.Second

	// DefaultMaxRetryAttempts is the default payment retry attempt budget.
	DefaultMaxRetryAttempts = 5

	// DefaultBaseDelayMinutes is the base unit for payment retry backoff.
	DefaultBaseDelayMinutes = 1

	// PaymentRetryBackoffCapMinutes bounds payment retry backoff.
	PaymentRetryBackoffCapMinutes = 30

	// DefaultPaymentTimeoutMinutes is how long an order may sit in
	// PAYMENT_PENDING before the scheduler treats it as timed out.
	DefaultPaymentTimeoutMinutes = 15

	// DefaultRetryBatchSize bounds how many orders the retry scheduler
	// examines per pass.
	DefaultRetryBatchSize = 100

	// DefaultConsumerConcurrency is the default number of concurrent
	// message handlers per queue.
	DefaultConsumerConcurrency = 3

	// MaxConsumerConcurrency caps configured consumer concurrency.
	MaxConsumerConcurrency = 10

	// DefaultConsumerPrefetch is the default AMQP QoS prefetch count.
	DefaultConsumerPrefetch = 10

	// DedupCacheTTL bounds how long a processed transaction_id is cached
	// in Redis as a fast-path dedup accelerator.
	DedupCacheTTL = 24 * time.Hour
)
