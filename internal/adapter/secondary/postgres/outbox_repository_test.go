package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

func newTestOutboxEvent(id string, createdAt time.Time) *entity.OutboxEvent {
	return &entity.OutboxEvent{
		EventID:       id,
		EventType:     entity.EventPaymentRequested,
		AggregateID:   "order-1",
		AggregateType: entity.AggregateOrder,
		Payload:       []byte(`{}`),
		Headers:       []byte(`{}`),
		CreatedAt:     createdAt,
		Version:       1,
	}
}

func TestOutboxRepository_Insert(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)

	evt := newTestOutboxEvent("evt-1", time.Now().UTC())
	if err := repo.Insert(context.Background(), evt); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var rows []outboxModel
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("listing outbox rows: %v", err)
	}
	if len(rows) != 1 || rows[0].EventID != "evt-1" {
		t.Fatalf("expected evt-1 to be inserted, got %+v", rows)
	}
}

func TestOutboxRepository_MarkProcessed(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	evt := newTestOutboxEvent("evt-1", time.Now().UTC())
	if err := repo.Insert(ctx, evt); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	processedAt := time.Now().UTC()
	if err := repo.MarkProcessed(ctx, "evt-1", 1, processedAt); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	var m outboxModel
	if err := db.First(&m, "event_id = ?", "evt-1").Error; err != nil {
		t.Fatalf("loading row: %v", err)
	}
	if !m.Processed {
		t.Error("expected row to be marked processed")
	}
	if m.Version != 2 {
		t.Errorf("expected version to advance to 2, got %d", m.Version)
	}
}

func TestOutboxRepository_MarkProcessed_staleVersionIsNoop(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	evt := newTestOutboxEvent("evt-1", time.Now().UTC())
	if err := repo.Insert(ctx, evt); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.MarkProcessed(ctx, "evt-1", 7, time.Now().UTC()); err != nil {
		t.Fatalf("MarkProcessed with stale version should not error: %v", err)
	}

	var m outboxModel
	if err := db.First(&m, "event_id = ?", "evt-1").Error; err != nil {
		t.Fatalf("loading row: %v", err)
	}
	if m.Processed {
		t.Error("expected a version-mismatched update to leave the row untouched")
	}
	if m.Version != 1 {
		t.Errorf("expected version to remain 1, got %d", m.Version)
	}
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()

	evt := newTestOutboxEvent("evt-1", time.Now().UTC())
	if err := repo.Insert(ctx, evt); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := repo.MarkFailed(ctx, "evt-1", 1, "broker unreachable"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	var m outboxModel
	if err := db.First(&m, "event_id = ?", "evt-1").Error; err != nil {
		t.Fatalf("loading row: %v", err)
	}
	if m.RetryCount != 1 || m.LastError != "broker unreachable" || m.Version != 2 {
		t.Errorf("unexpected row after MarkFailed: %+v", m)
	}
	if m.ClaimedAt != nil {
		t.Error("expected claimed_at to be cleared so the row is eligible for a future claim")
	}
}

func TestOutboxRepository_DeleteProcessedOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	old := newTestOutboxEvent("evt-old", now.Add(-time.Hour))
	if err := repo.Insert(ctx, old); err != nil {
		t.Fatalf("Insert old: %v", err)
	}
	processedAt := now.Add(-time.Hour)
	if err := db.Model(&outboxModel{}).Where("event_id = ?", "evt-old").
		Updates(map[string]any{"processed": true, "processed_at": processedAt}).Error; err != nil {
		t.Fatalf("seeding processed row: %v", err)
	}

	fresh := newTestOutboxEvent("evt-fresh", now)
	if err := repo.Insert(ctx, fresh); err != nil {
		t.Fatalf("Insert fresh: %v", err)
	}

	deleted, err := repo.DeleteProcessedOlderThan(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("DeleteProcessedOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted row, got %d", deleted)
	}

	var remaining []outboxModel
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("listing remaining rows: %v", err)
	}
	if len(remaining) != 1 || remaining[0].EventID != "evt-fresh" {
		t.Errorf("expected only evt-fresh to remain, got %+v", remaining)
	}
}

func TestOutboxRepository_DeletePoisonOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	poison := newTestOutboxEvent("evt-poison", now.Add(-time.Hour))
	if err := repo.Insert(ctx, poison); err != nil {
		t.Fatalf("Insert poison: %v", err)
	}
	if err := db.Model(&outboxModel{}).Where("event_id = ?", "evt-poison").
		Update("retry_count", 5).Error; err != nil {
		t.Fatalf("seeding poison retry_count: %v", err)
	}

	deleted, err := repo.DeletePoisonOlderThan(ctx, 5, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("DeletePoisonOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted poison row, got %d", deleted)
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Insert(ctx, newTestOutboxEvent("evt-1", now)); err != nil {
		t.Fatalf("Insert evt-1: %v", err)
	}
	if err := repo.Insert(ctx, newTestOutboxEvent("evt-2", now)); err != nil {
		t.Fatalf("Insert evt-2: %v", err)
	}
	if err := repo.MarkProcessed(ctx, "evt-1", 1, now); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	stats, err := repo.Stats(ctx, 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Processed != 1 || stats.Unprocessed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
