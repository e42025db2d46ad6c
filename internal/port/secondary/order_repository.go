package secondary

import (
	"context"
	"time"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// OrderRepository persists the Order aggregate.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error

	// GetByID loads an order. If forUpdate is true the row is locked
	// (SELECT ... FOR UPDATE) for the duration of the caller's
	// transaction, serializing concurrent transitions.
	GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Order, error)

	Update(ctx context.Context, order *entity.Order) error

	// ListPaymentFailed returns orders in PAYMENT_FAILED, oldest updated first.
	ListPaymentFailed(ctx context.Context, limit int) ([]*entity.Order, error)

	// ListPaymentPendingOlderThan returns PAYMENT_PENDING orders whose
	// UpdatedAt precedes the cutoff — the scheduler's timeout detector
	//.
	ListPaymentPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Order, error)
}
