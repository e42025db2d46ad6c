package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderflow/orderflow/internal/domain/entity"
	"github.com/orderflow/orderflow/internal/port/secondary"
)

// claimLeaseDuration bounds how long a claimed-but-not-yet-resolved
// outbox row is excluded from the next claim; it protects against a
// publisher crashing between claiming a batch and marking it resolved
// (grounded on the in-flight marker pattern used by the outbox worker
// this package is modeled on).
const claimLeaseDuration = 2 * time.Minute

// OutboxRepository implements secondary.OutboxRepository over Postgres.
// Claim* methods use a short, dedicated transaction that only locks and
// stamps rows — the broker publish itself always happens outside any
// database transaction.
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository constructs an OutboxRepository.
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

var _ secondary.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Insert(ctx context.Context, event *entity.OutboxEvent) error {
	m := outboxToModel(event)
	if err := dbFor(ctx, r.db, false).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting outbox event: %w", err)
	}
	return nil
}

func (r *OutboxRepository) ClaimDrainBatch(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	return r.claim(ctx, limit, "processed = ? AND retry_count = ?", false, 0)
}

func (r *OutboxRepository) ClaimRetryBatch(ctx context.Context, maxRetries int, backoffCap time.Duration, limit int, now time.Time) ([]*entity.OutboxEvent, error) {
	candidates, err := r.claim(ctx, limit*3, "processed = ? AND retry_count > 0 AND retry_count < ?", false, maxRetries)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.OutboxEvent, 0, limit)
	for _, e := range candidates {
		if len(out) == limit {
			break
		}
		if e.EligibleForRetry(now, maxRetries, backoffCap) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *OutboxRepository) claim(ctx context.Context, limit int, where string, args ...any) ([]*entity.OutboxEvent, error) {
	var claimed []outboxModel
	now := time.Now()
	staleBefore := now.Add(-claimLeaseDuration)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []outboxModel
		query := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(where, args...).
			Where("claimed_at IS NULL OR claimed_at < ?", staleBefore).
			Order("created_at asc").
			Limit(limit)
		if err := query.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.EventID
			rows[i].ClaimedAt = &now
		}
		if err := tx.Model(&outboxModel{}).Where("event_id IN ?", ids).Update("claimed_at", now).Error; err != nil {
			return err
		}
		claimed = rows
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claiming outbox batch: %w", err)
	}

	out := make([]*entity.OutboxEvent, len(claimed))
	for i, m := range claimed {
		out[i] = modelToOutbox(m)
	}
	return out, nil
}

func (r *OutboxRepository) MarkProcessed(ctx context.Context, eventID string, version int, processedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("event_id = ? AND version = ?", eventID, version).
		Updates(map[string]any{
			"processed":    true,
			"processed_at": processedAt,
			"version":      version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("marking outbox event %s processed: %w", eventID, res.Error)
	}
	// RowsAffected == 0 means a concurrent publisher already resolved this
	// row under a newer version; at most one duplicate delivery is
	// tolerated by design, so this is not an error.
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, version int, errMsg string) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("event_id = ? AND version = ?", eventID, version).
		Updates(map[string]any{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  errMsg,
			"version":     version + 1,
			"claimed_at":  nil,
		})
	if res.Error != nil {
		return fmt.Errorf("marking outbox event %s failed: %w", eventID, res.Error)
	}
	return nil
}

func (r *OutboxRepository) DeleteProcessedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed = ? AND processed_at < ?", true, cutoff).
		Delete(&outboxModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting processed outbox rows: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *OutboxRepository) DeletePoisonOlderThan(ctx context.Context, maxRetries int, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed = ? AND retry_count >= ? AND created_at < ?", false, maxRetries, cutoff).
		Delete(&outboxModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting poison outbox rows: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *OutboxRepository) Stats(ctx context.Context, maxRetries int) (entity.Stats, error) {
	var stats entity.Stats
	db := r.db.WithContext(ctx)

	if err := db.Model(&outboxModel{}).Count(&stats.Total).Error; err != nil {
		return stats, fmt.Errorf("counting outbox rows: %w", err)
	}
	if err := db.Model(&outboxModel{}).Where("processed = ?", false).Count(&stats.Unprocessed).Error; err != nil {
		return stats, fmt.Errorf("counting unprocessed outbox rows: %w", err)
	}
	if err := db.Model(&outboxModel{}).Where("processed = ? AND retry_count >= ?", false, maxRetries).Count(&stats.Failed).Error; err != nil {
		return stats, fmt.Errorf("counting poison outbox rows: %w", err)
	}
	if err := db.Model(&outboxModel{}).Where("processed = ?", true).Count(&stats.Processed).Error; err != nil {
		return stats, fmt.Errorf("counting processed outbox rows: %w", err)
	}
	return stats, nil
}
