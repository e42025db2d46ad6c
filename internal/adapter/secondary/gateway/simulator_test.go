package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/orderflow/orderflow/internal/clock"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

func testClock() clock.Clock {
	return clock.NewFake(time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC))
}

func newChargeRequest(txnID, cardNumber, amount string) secondary.GatewayChargeRequest {
	return secondary.GatewayChargeRequest{
		TransactionID: txnID,
		Amount:        valueobject.MustMoney(amount, "USD"),
		Card: valueobject.CardData{
			Number:          cardNumber,
			ExpiryMonthYear: "12/30",
			CVV:             "123",
			HolderName:      "Jane Doe",
		},
		MerchantID:  "merchant-1",
		Description: "order",
	}
}

func TestSimulator_Charge_approves(t *testing.T) {
	sim := NewSimulator(testClock())

	result, err := sim.Charge(context.Background(), newChargeRequest("txn-1", "4242424242424242", "49.99"))
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if !result.Approved {
		t.Errorf("expected approval, got decline %q", result.Decline)
	}
	if result.Response == "" {
		t.Error("expected a non-empty response code")
	}
}

func TestSimulator_Charge_declinesInsufficientFunds(t *testing.T) {
	sim := NewSimulator(testClock())

	result, err := sim.Charge(context.Background(), newChargeRequest("txn-2", "4000000000000000", "49.99"))
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.Approved {
		t.Error("expected a decline for a card ending in 0000")
	}
	if result.Decline != "insufficient funds" {
		t.Errorf("expected insufficient funds decline, got %q", result.Decline)
	}
}

func TestSimulator_Charge_declinesAmountTooLow(t *testing.T) {
	sim := NewSimulator(testClock())

	result, err := sim.Charge(context.Background(), newChargeRequest("txn-3", "4242424242424242", "0.01"))
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.Approved {
		t.Error("expected a decline for an amount of 0.01")
	}
	if result.Decline != "amount too low for processing" {
		t.Errorf("expected amount-too-low decline, got %q", result.Decline)
	}
}

func TestSimulator_Charge_transientFailureReturnsError(t *testing.T) {
	sim := NewSimulator(testClock())

	_, err := sim.Charge(context.Background(), newChargeRequest("txn-4", "4242424242429999", "49.99"))
	if err == nil {
		t.Fatal("expected an error for a card ending in 9999")
	}
}

func TestSimulator_Charge_declinesExpiredCard(t *testing.T) {
	sim := NewSimulator(testClock())
	req := newChargeRequest("txn-6", "4242424242424242", "49.99")
	req.Card.ExpiryMonthYear = "06/26"

	result, err := sim.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.Approved {
		t.Error("expected a decline for a card that expired before the current month")
	}
	if result.Decline != "expired card" {
		t.Errorf("expected expired card decline, got %q", result.Decline)
	}
}

func TestSimulator_Charge_approvesCardExpiringThisMonth(t *testing.T) {
	sim := NewSimulator(testClock())
	req := newChargeRequest("txn-7", "4242424242424242", "49.99")
	req.Card.ExpiryMonthYear = "07/26"

	result, err := sim.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if !result.Approved {
		t.Errorf("expected approval for a card expiring in the current month, got decline %q", result.Decline)
	}
}

func TestSimulator_Charge_isDeterministic(t *testing.T) {
	sim := NewSimulator(testClock())
	req := newChargeRequest("txn-5", "4000000000000000", "49.99")

	first, err := sim.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	second, err := sim.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if first.Approved != second.Approved || first.Decline != second.Decline {
		t.Error("expected identical requests to resolve identically across retries")
	}
}
