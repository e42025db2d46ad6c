package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
)

func newTestPayment(t *testing.T, id, txnID string, now time.Time) *entity.Payment {
	t.Helper()
	card := valueobject.MaskedCard{LastFour: "4242", ExpiryDate: "12/30", HolderName: "Jane Doe"}
	p, err := entity.NewPayment(id, txnID, "order-1", "cust-1", mustTestMoney("19.99", "USD"), card, now)
	if err != nil {
		t.Fatalf("NewPayment: %v", err)
	}
	p.Flush()
	return p
}

func TestPaymentRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := newTestPayment(t, "pay-1", "txn-1", now)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "pay-1", false)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TransactionID != "txn-1" || got.Status != entity.PaymentProcessing {
		t.Errorf("unexpected payment: %+v", got)
	}
}

func TestPaymentRepository_GetByTransactionID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := newTestPayment(t, "pay-1", "txn-1", now)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByTransactionID(ctx, "txn-1")
	if err != nil {
		t.Fatalf("GetByTransactionID: %v", err)
	}
	if got.ID != "pay-1" {
		t.Errorf("expected pay-1, got %s", got.ID)
	}

	_, err = repo.GetByTransactionID(ctx, "missing-txn")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentRepository_Create_duplicateTransactionID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first := newTestPayment(t, "pay-1", "txn-1", now)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}

	second := newTestPayment(t, "pay-2", "txn-1", now)
	err := repo.Create(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}
}

func TestPaymentRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := newTestPayment(t, "pay-1", "txn-1", now)
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := p.Succeed("APPROVED", now.Add(time.Second)); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	p.Flush()
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, "pay-1", false)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != entity.PaymentSuccess || got.GatewayResponse != "APPROVED" {
		t.Errorf("unexpected payment after update: %+v", got)
	}
}
