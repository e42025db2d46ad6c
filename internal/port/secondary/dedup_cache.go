package secondary

import "context"

// DedupCache is a fast-path accelerator in front of the Postgres-backed
// dedup check. It must never be the sole source of truth: a cache miss
// always falls back to the aggregate's persisted transaction_id.
type DedupCache interface {
	// SeenMessage reports whether messageID has already been recorded as
	// processed for aggregateID.
	SeenMessage(ctx context.Context, aggregateID, messageID string) (bool, error)

	// MarkSeen records messageID as processed for aggregateID with a
	// bounded TTL.
	MarkSeen(ctx context.Context, aggregateID, messageID string) error
}
