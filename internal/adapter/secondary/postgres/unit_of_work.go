// Package postgres adapts every persistence port onto GORM-backed
// Postgres repositories sharing one transaction boundary per UnitOfWork.Do
// call.
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderflow/orderflow/internal/port/secondary"
)

type contextKey string

const (
	txKey   contextKey = "orderflow_tx"
	lockKey contextKey = "orderflow_lock"
)

// UnitOfWork implements secondary.UnitOfWork using GORM.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork constructs a UnitOfWork bound to db.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

var _ secondary.UnitOfWork = (*UnitOfWork)(nil)

// Do begins a transaction, injects it into ctx, and runs fn. fn's error
// rolls the transaction back; a nil return commits.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := u.dbFromCtx(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("beginning transaction: %w", tx.Error)
	}

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (u *UnitOfWork) dbFromCtx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return u.db
}

// withLock marks ctx so the next repository read issued against it takes
// a SELECT ... FOR UPDATE row lock.
func withLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// dbFor resolves the *gorm.DB to use for one repository call: the
// transaction on ctx if present, otherwise fallback, with the FOR UPDATE
// clause applied when forUpdate was requested.
func dbFor(ctx context.Context, fallback *gorm.DB, forUpdate bool) *gorm.DB {
	db := fallback
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		db = tx
	}
	db = db.WithContext(ctx)
	if forUpdate {
		ctx = withLock(ctx)
	}
	if locked, ok := ctx.Value(lockKey).(bool); ok && locked {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
