package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// OrderRepository implements secondary.OrderRepository over Postgres.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository constructs an OrderRepository.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ secondary.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	m := orderToModel(order)
	if err := dbFor(ctx, r.db, false).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Order, error) {
	var m orderModel
	err := dbFor(ctx, r.db, forUpdate).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	return modelToOrder(m)
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	m := orderToModel(order)
	if err := dbFor(ctx, r.db, false).Model(&orderModel{}).Where("id = ?", order.ID).Select("*").Updates(&m).Error; err != nil {
		return fmt.Errorf("updating order %s: %w", order.ID, err)
	}
	return nil
}

func (r *OrderRepository) ListPaymentFailed(ctx context.Context, limit int) ([]*entity.Order, error) {
	var rows []orderModel
	err := dbFor(ctx, r.db, false).
		Where("status = ?", string(entity.OrderPaymentFailed)).
		Order("updated_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing payment-failed orders: %w", err)
	}
	return modelsToOrders(rows)
}

func (r *OrderRepository) ListPaymentPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Order, error) {
	var rows []orderModel
	err := dbFor(ctx, r.db, false).
		Where("status = ? AND updated_at < ?", string(entity.OrderPaymentPending), cutoff).
		Order("updated_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing timed-out pending orders: %w", err)
	}
	return modelsToOrders(rows)
}

func modelsToOrders(rows []orderModel) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0, len(rows))
	for _, m := range rows {
		o, err := modelToOrder(m)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
