package primary

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// CreateOrderRequest is the primary-port input for order creation.
type CreateOrderRequest struct {
	CustomerID  string
	Amount      string // decimal string, scale 2
	Currency    string
	Card        entity.CardDataBody
	MerchantID  string
	Description string
}

// OrderService is the primary port driven by the HTTP API.
type OrderService interface {
	// CreateOrder creates the order in CREATED then immediately requests
	// payment, staging PaymentRequested atomically with both writes.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*entity.Order, error)

	GetOrder(ctx context.Context, id string) (*entity.Order, error)

	// ManualRetryPayment bypasses the scheduler's timing guard but still
	// honors the attempt-count and status guards.
	ManualRetryPayment(ctx context.Context, orderID string) (*entity.Order, error)

	Cancel(ctx context.Context, orderID string) (*entity.Order, error)

	// ApplyPaymentConfirmation is driven by the payment.confirmation.queue
	// consumer. It performs the deduplicate-by-transaction-id
	// check and routes to ConfirmPayment/FailPayment. A transaction id
	// mismatch is reported as a no-op drop, never as an error to retry.
	ApplyPaymentConfirmation(ctx context.Context, body entity.PaymentConfirmationBody) error
}
