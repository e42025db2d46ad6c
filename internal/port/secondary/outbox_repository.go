package secondary

import (
	"context"
	"time"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// OutboxRepository is the secondary port for the outbox table. Writers
// insert within the caller's transaction (via UnitOfWork); the publisher
// is the sole mutator of Processed/ProcessedAt/RetryCount/LastError/
// Version thereafter.
type OutboxRepository interface {
	// Insert stages a row in the caller's ambient transaction.
	Insert(ctx context.Context, row *entity.OutboxEvent) error

	// ClaimDrainBatch selects the oldest unprocessed rows, tie-broken by
	// event id, bounded by limit.
	ClaimDrainBatch(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)

	// ClaimRetryBatch selects unprocessed, under-threshold rows eligible
	// for backoff-gated retry.
	ClaimRetryBatch(ctx context.Context, maxRetries int, backoffCap time.Duration, limit int, now time.Time) ([]*entity.OutboxEvent, error)

	// MarkProcessed marks a row processed under its optimistic version.
	// A version mismatch (row already mutated by a concurrent publisher)
	// is not an error: at most one duplicate delivery is tolerated by
	// design.
	MarkProcessed(ctx context.Context, eventID string, version int, processedAt time.Time) error

	// MarkFailed increments retry_count and records last_error.
	MarkFailed(ctx context.Context, eventID string, version int, errMsg string) error

	// DeleteProcessedOlderThan deletes processed rows past the retention window.
	DeleteProcessedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeletePoisonOlderThan deletes poisoned rows (retries exhausted) past
	// the retention window.
	DeletePoisonOlderThan(ctx context.Context, maxRetries int, cutoff time.Time) (int64, error)

	// Stats reports operator-visible counters.
	Stats(ctx context.Context, maxRetries int) (entity.Stats, error)
}
