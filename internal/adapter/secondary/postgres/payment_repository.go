package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orderflow/orderflow/internal/domain"
	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// PaymentRepository implements secondary.PaymentRepository over Postgres.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

var _ secondary.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	m := paymentToModel(payment)
	err := dbFor(ctx, r.db, false).Create(&m).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", domain.ErrDuplicateTransaction, payment.TransactionID)
		}
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*entity.Payment, error) {
	var m paymentModel
	err := dbFor(ctx, r.db, forUpdate).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading payment %s: %w", id, err)
	}
	return modelToPayment(m)
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	var m paymentModel
	err := dbFor(ctx, r.db, false).First(&m, "transaction_id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading payment by transaction %s: %w", transactionID, err)
	}
	return modelToPayment(m)
}

func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	m := paymentToModel(payment)
	if err := dbFor(ctx, r.db, false).Model(&paymentModel{}).Where("id = ?", payment.ID).Select("*").Updates(&m).Error; err != nil {
		return fmt.Errorf("updating payment %s: %w", payment.ID, err)
	}
	return nil
}

// isUniqueViolation detects a unique-constraint violation across the
// Postgres and SQLite drivers this module supports (tests run against
// SQLite in-process; production runs Postgres).
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
