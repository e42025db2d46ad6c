package primary

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// PaymentService is the primary port driven by the payment.request.queue
// consumer and by the read-only HTTP surface.
type PaymentService interface {
	// HandlePaymentRequest processes an inbound PaymentRequest message:
	// creates (or resumes) the Payment aggregate, calls the gateway,
	// transitions to SUCCESS/FAILED, and stages PaymentConfirmation.
	HandlePaymentRequest(ctx context.Context, body entity.PaymentRequestedBody) error

	GetPayment(ctx context.Context, id string) (*entity.Payment, error)
}
