package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// RetryHistoryRepository implements secondary.RetryHistoryRepository
// over Postgres.
type RetryHistoryRepository struct {
	db *gorm.DB
}

// NewRetryHistoryRepository constructs a RetryHistoryRepository.
func NewRetryHistoryRepository(db *gorm.DB) *RetryHistoryRepository {
	return &RetryHistoryRepository{db: db}
}

var _ secondary.RetryHistoryRepository = (*RetryHistoryRepository)(nil)

func (r *RetryHistoryRepository) Create(ctx context.Context, history *entity.RetryHistory) error {
	m, err := retryHistoryToModel(history)
	if err != nil {
		return err
	}
	if err := dbFor(ctx, r.db, false).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting retry history for order %s: %w", history.OrderID, err)
	}
	return nil
}

func (r *RetryHistoryRepository) GetByOrderID(ctx context.Context, orderID string, forUpdate bool) (*entity.RetryHistory, error) {
	var m retryHistoryModel
	err := dbFor(ctx, r.db, forUpdate).First(&m, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: retry history for order %s", domain.ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading retry history for order %s: %w", orderID, err)
	}
	return modelToRetryHistory(m)
}

func (r *RetryHistoryRepository) Update(ctx context.Context, history *entity.RetryHistory) error {
	m, err := retryHistoryToModel(history)
	if err != nil {
		return err
	}
	if err := dbFor(ctx, r.db, false).Model(&retryHistoryModel{}).Where("order_id = ?", history.OrderID).Select("*").Updates(&m).Error; err != nil {
		return fmt.Errorf("updating retry history for order %s: %w", history.OrderID, err)
	}
	return nil
}
