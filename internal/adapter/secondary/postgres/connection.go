package postgres

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM-backed Postgres connection and runs AutoMigrate
// for every model this module owns. PrepareStmt is left off:
// the outbox claim query already takes a row lock per call, and a
// cached prepared statement buys nothing across short-lived claim
// transactions.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// HealthCheck implements secondary.HealthChecker against the
// underlying *sql.DB connection pool.
type HealthCheck struct {
	db *gorm.DB
}

// NewHealthCheck constructs a HealthCheck.
func NewHealthCheck(db *gorm.DB) *HealthCheck {
	return &HealthCheck{db: db}
}

// Name identifies this checker in the aggregate health report.
func (h *HealthCheck) Name() string { return "postgres" }

// Check pings the database.
func (h *HealthCheck) Check(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
