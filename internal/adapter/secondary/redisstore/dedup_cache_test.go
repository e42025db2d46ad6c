package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) *DedupCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDedupCache(client, ttl)
}

func TestDedupCache_SeenMessage_missByDefault(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	seen, err := cache.SeenMessage(context.Background(), "order-1", "msg-1")
	if err != nil {
		t.Fatalf("SeenMessage: %v", err)
	}
	if seen {
		t.Error("expected a fresh message to be unseen")
	}
}

func TestDedupCache_MarkSeen_thenSeenMessage(t *testing.T) {
	cache := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.MarkSeen(ctx, "order-1", "msg-1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := cache.SeenMessage(ctx, "order-1", "msg-1")
	if err != nil {
		t.Fatalf("SeenMessage: %v", err)
	}
	if !seen {
		t.Error("expected the marked message to be seen")
	}
}

func TestDedupCache_MarkSeen_distinguishesAggregateAndMessage(t *testing.T) {
	cache := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.MarkSeen(ctx, "order-1", "msg-1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := cache.SeenMessage(ctx, "order-2", "msg-1")
	if err != nil {
		t.Fatalf("SeenMessage: %v", err)
	}
	if seen {
		t.Error("expected a different aggregate id to be unseen")
	}
}
