package entity

import "time"

// EventType tags the variant of an OutboxEvent payload. The dispatcher
// routes on this tag.
type EventType string

const (
	EventPaymentRequested    EventType = "PaymentRequested"
	EventPaymentConfirmed    EventType = "PaymentConfirmed"
	EventPaymentFailed       EventType = "PaymentFailed"
	EventPaymentConfirmation EventType = "PaymentConfirmation"
)

// AggregateType names the owning aggregate of a staged event.
type AggregateType string

const (
	AggregateOrder   AggregateType = "order"
	AggregatePayment AggregateType = "payment"
)

// DomainEvent is the common envelope every aggregate emits into its
// per-operation event buffer. Producer-side metadata (event id,
// headers) is attached by the outbox writer at staging time, not here.
type DomainEvent struct {
	Type          EventType
	AggregateID   string
	AggregateType AggregateType
	OccurredAt    time.Time
	Body          any
}

// PaymentRequestedBody is staged by the Order aggregate when it enters
// PAYMENT_PENDING, and becomes the payment.request.queue wire message.
// Card carries the raw card data, CVV included: the payment service needs
// it in full to call the gateway, and the Payment aggregate keeps only a
// masked projection. On the order side the same card is kept on the order
// row for retries and is serialized into this event's outbox row payload.
type PaymentRequestedBody struct {
	OrderID       string
	TransactionID string
	CustomerID    string
	Amount        string
	Currency      string
	Card          CardDataBody
	MerchantID    string
	Description   string
}

// CardDataBody is the wire projection of valueobject.CardData carried on
// a PaymentRequested event.
type CardDataBody struct {
	Number          string
	ExpiryMonthYear string
	CVV             string
	HolderName      string
}

// MaskedCardBody is the wire-safe card projection carried on read-only
// responses, once a Payment aggregate has masked the original card.
type MaskedCardBody struct {
	LastFour   string
	ExpiryDate string
	HolderName string
}

// PaymentConfirmedBody is staged by the Order aggregate when a
// PaymentConfirmation with status SUCCESS is applied.
type PaymentConfirmedBody struct {
	OrderID       string
	TransactionID string
	PaymentID     string
}

// PaymentFailedBody is staged by the Order aggregate when a payment
// attempt fails or is exhausted.
type PaymentFailedBody struct {
	OrderID       string
	TransactionID string
	Reason        string
}

// PaymentConfirmationBody is staged by the Payment aggregate after a
// gateway call resolves, and becomes the payment.confirmation.queue
// wire message consumed by the order service.
type PaymentConfirmationBody struct {
	PaymentID       string
	TransactionID   string
	OrderID         string
	Status          string
	Amount          string
	Currency        string
	GatewayResponse string
	ErrorMessage    string
	ProcessedAt     time.Time
}
