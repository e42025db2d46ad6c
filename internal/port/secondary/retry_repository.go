package secondary

import (
	"context"

	"github.com/orderflow/orderflow/internal/domain/entity"
)

// RetryHistoryRepository persists the order-side RetryHistory aggregate
//. At most one row exists per OrderID, enforced by a unique
// index at the storage layer.
type RetryHistoryRepository interface {
	Create(ctx context.Context, history *entity.RetryHistory) error
	GetByOrderID(ctx context.Context, orderID string, forUpdate bool) (*entity.RetryHistory, error)
	Update(ctx context.Context, history *entity.RetryHistory) error
}
