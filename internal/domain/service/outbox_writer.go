package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// OutboxWriter stages an aggregate's buffered events into the outbox
// table. It must always be called inside the same UnitOfWork.Do
// transaction as the aggregate write that produced the events — this is
// the core atomicity invariant the outbox pattern depends on.
type OutboxWriter struct {
	repo  secondary.OutboxRepository
	clock clock.Clock
}

// NewOutboxWriter constructs an OutboxWriter.
func NewOutboxWriter(repo secondary.OutboxRepository, clk clock.Clock) *OutboxWriter {
	return &OutboxWriter{repo: repo, clock: clk}
}

// Stage serializes and inserts one row per buffered event, each carrying
// its own event id, occurrence timestamp, type name, and version=1.
func (w *OutboxWriter) Stage(ctx context.Context, events []entity.DomainEvent) error {
	for _, evt := range events {
		payload, err := json.Marshal(evt.Body)
		if err != nil {
			return fmt.Errorf("marshaling event body for %s: %w", evt.Type, err)
		}

		headers, err := json.Marshal(map[string]any{
			"eventType":   evt.Type,
			"occurredAt":  evt.OccurredAt,
			"version":     1,
			"aggregateId": evt.AggregateID,
		})
		if err != nil {
			return fmt.Errorf("marshaling event headers for %s: %w", evt.Type, err)
		}

		transactionID, orderID, customerID := extractTraceIDs(evt.Body)

		row := &entity.OutboxEvent{
			EventID:       uuid.NewString(),
			EventType:     evt.Type,
			AggregateID:   evt.AggregateID,
			AggregateType: evt.AggregateType,
			Payload:       payload,
			Headers:       headers,
			CreatedAt:     w.clock.Now(),
			Processed:     false,
			Version:       1,
			TransactionID: transactionID,
			OrderID:       orderID,
			CustomerID:    customerID,
		}

		if err := w.repo.Insert(ctx, row); err != nil {
			return fmt.Errorf("inserting outbox row for %s: %w", evt.Type, err)
		}
	}
	return nil
}

// extractTraceIDs pulls the transaction id, order id, and (where present)
// customer id out of a staged event body so the publisher can put them on
// the wire without re-parsing Payload. customerID is empty for bodies that
// don't carry one.
func extractTraceIDs(body any) (transactionID, orderID, customerID string) {
	switch b := body.(type) {
	case entity.PaymentRequestedBody:
		return b.TransactionID, b.OrderID, b.CustomerID
	case entity.PaymentConfirmedBody:
		return b.TransactionID, b.OrderID, ""
	case entity.PaymentFailedBody:
		return b.TransactionID, b.OrderID, ""
	case entity.PaymentConfirmationBody:
		return b.TransactionID, b.OrderID, ""
	default:
		return "", "", ""
	}
}
