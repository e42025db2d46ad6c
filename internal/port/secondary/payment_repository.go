package secondary

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// PaymentRepository persists the Payment aggregate. Create
// must reject a duplicate TransactionID with domain.ErrDuplicateTransaction
// — the unique (transaction_id) index is the enforcement point.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
}
