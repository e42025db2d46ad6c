package secondary

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/valueobject"
)

// GatewayChargeRequest carries the fields a real processor would need.
// CVV is present only here, at the boundary, and must not be retained
// past the Charge call.
type GatewayChargeRequest struct {
	TransactionID string
	Amount        valueobject.Money
	Card          valueobject.CardData
	MerchantID    string
	Description   string
}

// GatewayChargeResult reports the outcome of a charge attempt.
type GatewayChargeResult struct {
	Approved bool
	Response string // opaque gateway response code/message
	Decline  string // reason, set when Approved is false
}

// PaymentGateway is the secondary port the payment service calls to
// authorize a charge. The gateway package supplies a deterministic
// in-process simulator so the service is runnable without a live
// processor.
type PaymentGateway interface {
	Charge(ctx context.Context, req GatewayChargeRequest) (GatewayChargeResult, error)
}
