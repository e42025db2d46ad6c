package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// DedupCache implements secondary.DedupCache as a Redis SET-based
// accelerator. It is deliberately not the system of record: a cache miss
// (including total data loss) only costs one avoidable round trip to
// Postgres, where the aggregate's transaction_id remains authoritative.
type DedupCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewDedupCache constructs a DedupCache with the given entry TTL.
func NewDedupCache(client redis.UniversalClient, ttl time.Duration) *DedupCache {
	return &DedupCache{client: client, ttl: ttl}
}

var _ secondary.DedupCache = (*DedupCache)(nil)

func (c *DedupCache) SeenMessage(ctx context.Context, aggregateID, messageID string) (bool, error) {
	n, err := c.client.Exists(ctx, dedupKey(aggregateID, messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking dedup cache: %w", err)
	}
	return n > 0, nil
}

func (c *DedupCache) MarkSeen(ctx context.Context, aggregateID, messageID string) error {
	if err := c.client.Set(ctx, dedupKey(aggregateID, messageID), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("marking dedup cache: %w", err)
	}
	return nil
}

func dedupKey(aggregateID, messageID string) string {
	return fmt.Sprintf("orderflow:dedup:%s:%s", aggregateID, messageID)
}
