package entity

import (
	"fmt"
	"time"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/valueobject"
)

// PaymentStatus enumerates the legal states of the Payment aggregate.
type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentSuccess    PaymentStatus = "SUCCESS"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Payment is the payment-side aggregate root. CVV is never a
// field here: it is accepted at the HTTP/message boundary, forwarded to
// the gateway, and discarded — only MaskedCard survives into the
// aggregate.
type Payment struct {
	ID              string
	TransactionID   string
	OrderID         string
	CustomerID      string
	Amount          valueobject.Money
	Card            valueobject.MaskedCard
	Status          PaymentStatus
	GatewayResponse string
	ErrorMessage    string
	CreatedAt       time.Time
	ProcessedAt     *time.Time

	events []DomainEvent
}

// NewPayment constructs a PROCESSING payment for a freshly received
// PaymentRequest. transactionID uniqueness across all payments is
// enforced at the repository layer.
func NewPayment(id, transactionID, orderID, customerID string, amount valueobject.Money, card valueobject.MaskedCard, now time.Time) (*Payment, error) {
	if id == "" || transactionID == "" || orderID == "" {
		return nil, fmt.Errorf("%w: payment id, transaction id and order id are required", domain.ErrValidation)
	}
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	return &Payment{
		ID:            id,
		TransactionID: transactionID,
		OrderID:       orderID,
		CustomerID:    customerID,
		Amount:        amount,
		Card:          card,
		Status:        PaymentProcessing,
		CreatedAt:     now,
	}, nil
}

// Events returns the buffered events accumulated since the last Flush.
func (p *Payment) Events() []DomainEvent { return p.events }

// Flush returns and clears the buffered events.
func (p *Payment) Flush() []DomainEvent {
	events := p.events
	p.events = nil
	return events
}

func (p *Payment) emit(evt DomainEvent) {
	evt.AggregateID = p.ID
	evt.AggregateType = AggregatePayment
	p.events = append(p.events, evt)
}

// Succeed transitions PROCESSING to SUCCESS and stages a PaymentConfirmation.
func (p *Payment) Succeed(gatewayResponse string, now time.Time) error {
	if p.Status != PaymentProcessing {
		return fmt.Errorf("%w: cannot succeed from status %s", domain.ErrIllegalState, p.Status)
	}
	p.Status = PaymentSuccess
	p.GatewayResponse = gatewayResponse
	p.ProcessedAt = &now

	p.emitConfirmation("SUCCESS", gatewayResponse, "", now)
	return nil
}

// Fail transitions PROCESSING to FAILED and stages a PaymentConfirmation
// carrying the failure reason.
func (p *Payment) Fail(errorMessage string, now time.Time) error {
	if p.Status != PaymentProcessing {
		return fmt.Errorf("%w: cannot fail from status %s", domain.ErrIllegalState, p.Status)
	}
	p.Status = PaymentFailed
	p.ErrorMessage = errorMessage
	p.ProcessedAt = &now

	p.emitConfirmation("FAILED", "", errorMessage, now)
	return nil
}

// Refund transitions SUCCESS to REFUNDED. FAILED and REFUNDED are
// terminal; only SUCCESS may be refunded.
func (p *Payment) Refund(now time.Time) error {
	if p.Status != PaymentSuccess {
		return fmt.Errorf("%w: cannot refund from status %s", domain.ErrIllegalState, p.Status)
	}
	p.Status = PaymentRefunded
	p.ProcessedAt = &now
	return nil
}

func (p *Payment) emitConfirmation(status, gatewayResponse, errorMessage string, now time.Time) {
	p.emit(DomainEvent{
		Type:       EventPaymentConfirmation,
		OccurredAt: now,
		Body: PaymentConfirmationBody{
			PaymentID:       p.ID,
			TransactionID:   p.TransactionID,
			OrderID:         p.OrderID,
			Status:          status,
			Amount:          p.Amount.Decimal().StringFixed(2),
			Currency:        p.Amount.Currency(),
			GatewayResponse: gatewayResponse,
			ErrorMessage:    errorMessage,
			ProcessedAt:     now,
		},
	})
}
