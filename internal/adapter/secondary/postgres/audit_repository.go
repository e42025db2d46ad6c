package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

// AuditRepository implements secondary.AuditRepository over Postgres.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ secondary.AuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) Record(ctx context.Context, entry secondary.AuditEntry) error {
	m := auditModel{
		AggregateID:      entry.AggregateID,
		TransactionID:    entry.TransactionID,
		SupersededByTxID: entry.SupersededByTxID,
		Reason:           entry.Reason,
		RecordedAt:       time.Now(),
	}
	if err := dbFor(ctx, r.db, false).Create(&m).Error; err != nil {
		return fmt.Errorf("recording audit entry for %s: %w", entry.AggregateID, err)
	}
	return nil
}
