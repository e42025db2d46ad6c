package entity

import (
	"fmt"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
)

// OrderStatus enumerates the legal states of the Order aggregate.
type OrderStatus string

const (
	OrderCreated          OrderStatus = "CREATED"
	OrderPaymentPending   OrderStatus = "PAYMENT_PENDING"
	OrderPaymentConfirmed OrderStatus = "PAYMENT_CONFIRMED"
	OrderPaymentFailed    OrderStatus = "PAYMENT_FAILED"
	OrderCancelled        OrderStatus = "CANCELLED"
)

// Order is the order-side aggregate root. TransactionID rotates
// on every retry and is non-empty iff Status is one of PAYMENT_PENDING,
// PAYMENT_CONFIRMED, PAYMENT_FAILED.
type Order struct {
	ID            string
	CustomerID    string
	Amount        valueobject.Money
	Status        OrderStatus
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// card is retained across retries so the scheduler and manual retry
	// path can resubmit a charge without the caller supplying it again.
	// A production system would hold a gateway-issued token here instead
	// of raw card data; this module has no vault of its own, so the last
	// submitted card travels with the order.
	card        CardDataBody
	merchantID  string
	description string

	// events is the per-operation buffer command methods append to; it
	// is drained by Flush after every command.
	events []DomainEvent
}

// NewOrder constructs a CREATED order. amount must be strictly positive;
// amount == 0 is rejected.
func NewOrder(id, customerID string, amount valueobject.Money, now time.Time) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	return &Order{
		ID:         id,
		CustomerID: customerID,
		Amount:     amount,
		Status:     OrderCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CardOnFile returns the card data submitted with the most recent
// payment request, for reuse by a retry.
func (o *Order) CardOnFile() CardDataBody { return o.card }

// MerchantID returns the merchant id submitted with the most recent
// payment request.
func (o *Order) MerchantID() string { return o.merchantID }

// Description returns the description submitted with the most recent
// payment request.
func (o *Order) Description() string { return o.description }

// Events returns the buffered events accumulated since the last Flush.
func (o *Order) Events() []DomainEvent { return o.events }

// Flush returns and clears the buffered events. Callers invoke this
// after persisting the aggregate, staging the returned events in the
// same database transaction.
func (o *Order) Flush() []DomainEvent {
	events := o.events
	o.events = nil
	return events
}

func (o *Order) emit(evt DomainEvent) {
	evt.AggregateID = o.ID
	evt.AggregateType = AggregateOrder
	o.events = append(o.events, evt)
}

// RequestPayment transitions CREATED or PAYMENT_FAILED to PAYMENT_PENDING
// under a freshly minted transaction id, emitting PaymentRequested.
func (o *Order) RequestPayment(transactionID string, card CardDataBody, merchantID, description string, now time.Time) error {
	switch o.Status {
	case OrderCreated, OrderPaymentFailed:
	default:
		return fmt.Errorf("%w: cannot request payment from status %s", domain.ErrIllegalState, o.Status)
	}
	if transactionID == "" {
		return fmt.Errorf("%w: transaction id is required", domain.ErrValidation)
	}

	o.Status = OrderPaymentPending
	o.TransactionID = transactionID
	o.UpdatedAt = now
	o.card = card
	o.merchantID = merchantID
	o.description = description

	o.emit(DomainEvent{
		Type:       EventPaymentRequested,
		OccurredAt: now,
		Body: PaymentRequestedBody{
			OrderID:       o.ID,
			TransactionID: transactionID,
			CustomerID:    o.CustomerID,
			Amount:        o.Amount.Decimal().StringFixed(2),
			Currency:      o.Amount.Currency(),
			Card:          card,
			MerchantID:    merchantID,
			Description:   description,
		},
	})
	return nil
}

// ConfirmPayment transitions PAYMENT_PENDING to PAYMENT_CONFIRMED, guarded
// by transaction id match. A mismatch returns ErrTransactionMismatch and
// must never be retried by the caller. A redelivered confirmation that
// matches both the already-reached PAYMENT_CONFIRMED status and the
// current transaction id is a known-applied duplicate, not a conflict:
// it returns ErrAlreadyApplied so the caller acks instead of dead-lettering it.
func (o *Order) ConfirmPayment(paymentID, transactionID string, now time.Time) error {
	if o.Status == OrderPaymentConfirmed && o.TransactionID == transactionID {
		return domain.ErrAlreadyApplied
	}
	if o.Status != OrderPaymentPending {
		return fmt.Errorf("%w: cannot confirm payment from status %s", domain.ErrIllegalState, o.Status)
	}
	if o.TransactionID != transactionID {
		return fmt.Errorf("%w: order has %q, confirmation carries %q", domain.ErrTransactionMismatch, o.TransactionID, transactionID)
	}

	o.Status = OrderPaymentConfirmed
	o.UpdatedAt = now

	o.emit(DomainEvent{
		Type:       EventPaymentConfirmed,
		OccurredAt: now,
		Body: PaymentConfirmedBody{
			OrderID:       o.ID,
			TransactionID: transactionID,
			PaymentID:     paymentID,
		},
	})
	return nil
}

// FailPayment transitions PAYMENT_PENDING to PAYMENT_FAILED, guarded by
// transaction id match. The scheduler also calls this directly (with the
// order's own current transaction id) when a retry budget is exhausted.
// A redelivered failure that matches both the already-reached
// PAYMENT_FAILED status and the current transaction id is a known-applied
// duplicate, not a conflict: it returns ErrAlreadyApplied so the caller
// acks instead of dead-lettering it.
func (o *Order) FailPayment(reason, transactionID string, now time.Time) error {
	if o.Status == OrderPaymentFailed && o.TransactionID == transactionID {
		return domain.ErrAlreadyApplied
	}
	if o.Status != OrderPaymentPending {
		return fmt.Errorf("%w: cannot fail payment from status %s", domain.ErrIllegalState, o.Status)
	}
	if o.TransactionID != transactionID {
		return fmt.Errorf("%w: order has %q, failure carries %q", domain.ErrTransactionMismatch, o.TransactionID, transactionID)
	}

	o.Status = OrderPaymentFailed
	o.UpdatedAt = now

	o.emit(DomainEvent{
		Type:       EventPaymentFailed,
		OccurredAt: now,
		Body: PaymentFailedBody{
			OrderID:       o.ID,
			TransactionID: transactionID,
			Reason:        reason,
		},
	})
	return nil
}

// Cancel transitions CREATED or PAYMENT_FAILED to CANCELLED and clears
// TransactionID. No event is emitted — cancellation is a local,
// order-side-only concern.
func (o *Order) Cancel(now time.Time) error {
	switch o.Status {
	case OrderCreated, OrderPaymentFailed:
	default:
		return fmt.Errorf("%w: cannot cancel from status %s", domain.ErrIllegalState, o.Status)
	}
	o.Status = OrderCancelled
	o.TransactionID = ""
	o.UpdatedAt = now
	return nil
}
