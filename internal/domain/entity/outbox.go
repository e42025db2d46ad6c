package entity

import "time"

// OutboxEvent is a durable, pending outbound message staged in the same
// database transaction as the aggregate change that produced it. The
// publisher is the sole mutator of Processed/ProcessedAt/RetryCount/
// LastError/Version.
type OutboxEvent struct {
	EventID       string
	EventType     EventType
	AggregateID   string
	AggregateType AggregateType
	Payload       []byte
	Headers       []byte
	CreatedAt     time.Time
	Processed     bool
	ProcessedAt   *time.Time
	RetryCount    int
	LastError     string
	Version       int

	// TransactionID, OrderID, and CustomerID are pulled out of the staged
	// event body at write time so the publisher can put them on the wire
	// (correlation id, headers) without re-parsing Payload. CustomerID is
	// empty for event bodies that don't carry one.
	TransactionID string
	OrderID       string
	CustomerID    string
}

// EligibleForRetry reports whether this row may be picked up by the
// Retry loop: not yet processed, under the poison threshold, and past
// its exponential backoff window from CreatedAt.
func (e *OutboxEvent) EligibleForRetry(now time.Time, maxRetries int, backoffCap time.Duration) bool {
	if e.Processed || e.RetryCount >= maxRetries {
		return false
	}
	return now.Sub(e.CreatedAt) >= outboxBackoff(e.RetryCount, backoffCap)
}

// IsPoison reports whether this row has exhausted its retry budget and
// is no longer eligible for retry.
func (e *OutboxEvent) IsPoison(maxRetries int) bool {
	return !e.Processed && e.RetryCount >= maxRetries
}

func outboxBackoff(retryCount int, cap time.Duration) time.Duration {
	d := exponentialMinutes(retryCount)
	if d > cap {
		return cap
	}
	return d
}

func exponentialMinutes(n int) time.Duration {
	minutes := 1 << uint(clampExp(n))
	return time.Duration(minutes) * time.Minute
}

func clampExp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 30 {
		return 30 // avoid overflow; backoffCap dominates long before this
	}
	return n
}

// Stats summarizes outbox row counts for operator visibility.
type Stats struct {
	Total       int64
	Unprocessed int64
	Failed      int64 // unprocessed and at/over the poison threshold
	Processed   int64
}
