package postgres

import (
	"context"
	"testing"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

func TestAuditRepository_Record(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)

	entry := secondary.AuditEntry{
		AggregateID:      "order-1",
		TransactionID:    "txn-1",
		SupersededByTxID: "txn-2",
		Reason:           "stale confirmation dropped",
	}
	if err := repo.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var rows []auditModel
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("listing audit rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(rows))
	}
	if rows[0].AggregateID != "order-1" || rows[0].Reason != "stale confirmation dropped" {
		t.Errorf("unexpected audit row: %+v", rows[0])
	}
}
