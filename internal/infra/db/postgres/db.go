package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/apperr"
)

// Postgres error codes the stores translate.
const (
	codeExclusionViolation   = "23P01"
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

const createOverlapConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (property_id WITH =, daterange(start_date, end_date, '[]') WITH &&)
			WHERE (status <> 'CANCELLED');
	END IF;
END
$$;`

// Open connects through the pgx-backed GORM driver.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return db, nil
}

// Migrate creates the tables and the overlap exclusion constraint. The
// constraint needs btree_gist for the equality part on property_id.
func Migrate(ctx context.Context, db *gorm.DB) error {
	conn := db.WithContext(ctx)
	if err := conn.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("postgres: btree_gist: %w", err)
	}
	if err := conn.AutoMigrate(&propertyRow{}, &userRow{}, &bookingRow{}, &paymentRow{}, &reviewRow{}, &outboxRow{}, &idempotencyRow{}); err != nil {
		return fmt.Errorf("postgres: automigrate: %w", err)
	}
	if err := conn.Exec(createOverlapConstraint).Error; err != nil {
		return fmt.Errorf("postgres: overlap constraint: %w", err)
	}
	return nil
}

// Ping checks connectivity for the readiness check.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps driver errors onto domain errors. unique is returned for
// unique-index violations since its meaning depends on the table.
func translate(err error, notFound, unique error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeExclusionViolation:
			return domainbooking.ErrDatesOverlap
		case codeUniqueViolation:
			if unique != nil {
				return unique
			}
		case codeSerializationFailure, codeDeadlockDetected:
			return domainbooking.ErrConcurrentUpdate
		}
	}
	return apperr.Wrap(apperr.KindInternal, "postgres: query failed", err)
}
