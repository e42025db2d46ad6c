package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
)

func newTestOrder(t *testing.T, id string, now time.Time) *entity.Order {
	t.Helper()
	o, err := entity.NewOrder(id, "cust-1", mustTestMoney("19.99", "USD"), now)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	o.Flush()
	return o
}

func TestOrderRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	o := newTestOrder(t, "order-1", now)

	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "order-1", false)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != o.ID || got.CustomerID != o.CustomerID {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestOrderRepository_GetByID_notFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.GetByID(context.Background(), "missing", false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	o := newTestOrder(t, "order-1", now)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	card := entity.CardDataBody{Number: "4242424242424242", ExpiryMonthYear: "12/30", CVV: "123"}
	if err := o.RequestPayment("txn-1", card, "merchant-1", "desc", now.Add(time.Minute)); err != nil {
		t.Fatalf("RequestPayment: %v", err)
	}
	o.Flush()
	if err := repo.Update(ctx, o); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "order-1", false)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != entity.OrderPaymentPending {
		t.Errorf("expected PAYMENT_PENDING, got %s", got.Status)
	}
	if got.TransactionID != "txn-1" {
		t.Errorf("expected transaction id to persist, got %s", got.TransactionID)
	}
}

func TestOrderRepository_ListPaymentFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	card := entity.CardDataBody{Number: "4242424242424242", ExpiryMonthYear: "12/30", CVV: "123"}

	failed := newTestOrder(t, "order-failed", now)
	if err := failed.RequestPayment("txn-1", card, "m", "d", now); err != nil {
		t.Fatalf("RequestPayment: %v", err)
	}
	if err := failed.FailPayment("declined", "txn-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("FailPayment: %v", err)
	}
	if err := repo.Create(ctx, failed); err != nil {
		t.Fatalf("Create failed order: %v", err)
	}

	pending := newTestOrder(t, "order-pending", now)
	if err := pending.RequestPayment("txn-2", card, "m", "d", now); err != nil {
		t.Fatalf("RequestPayment: %v", err)
	}
	if err := repo.Create(ctx, pending); err != nil {
		t.Fatalf("Create pending order: %v", err)
	}

	rows, err := repo.ListPaymentFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListPaymentFailed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "order-failed" {
		t.Errorf("expected only order-failed, got %+v", rows)
	}
}

func TestOrderRepository_ListPaymentPendingOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	card := entity.CardDataBody{Number: "4242424242424242", ExpiryMonthYear: "12/30", CVV: "123"}

	old := newTestOrder(t, "order-old", now.Add(-time.Hour))
	if err := old.RequestPayment("txn-1", card, "m", "d", now.Add(-time.Hour)); err != nil {
		t.Fatalf("RequestPayment: %v", err)
	}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("Create old order: %v", err)
	}

	fresh := newTestOrder(t, "order-fresh", now)
	if err := fresh.RequestPayment("txn-2", card, "m", "d", now); err != nil {
		t.Fatalf("RequestPayment: %v", err)
	}
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("Create fresh order: %v", err)
	}

	rows, err := repo.ListPaymentPendingOlderThan(ctx, now.Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("ListPaymentPendingOlderThan: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "order-old" {
		t.Errorf("expected only order-old, got %+v", rows)
	}
}
