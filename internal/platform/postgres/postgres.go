// Package postgres opens the shared *sql.DB, applies the schema and maps
// driver errors for both lib/pq and pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the stores care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// MaxElapsed bounds the startup ping retry. Zero uses one minute.
	MaxElapsed time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns == 0 {
		o.MaxOpenConns = 20
	}
	if o.MaxIdleConns == 0 {
		o.MaxIdleConns = 5
	}
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = 30 * time.Minute
	}
	if o.MaxElapsed == 0 {
		o.MaxElapsed = time.Minute
	}
	return o
}

// Connect opens driver/dsn and pings with exponential backoff until the
// database answers, ctx ends, or MaxElapsed passes. driver is "postgres"
// (lib/pq) or "pgx" (pgx stdlib); main registers both.
func Connect(ctx context.Context, driver, dsn string, opts Options, logger *slog.Logger) (*sql.DB, error) {
	opts = opts.withDefaults()
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = opts.MaxElapsed

	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		logger.WarnContext(ctx, "database not ready, retrying",
			"attempt", attempt,
			"retry_in", wait.String(),
			"error", err,
		)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
	}
	logger.InfoContext(ctx, "database connected", "driver", driver, "attempts", attempt)
	return db, nil
}

// IsUniqueViolation reports a unique constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports a foreign key failure from either driver.
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsCheckViolation reports a CHECK constraint failure from either driver.
func IsCheckViolation(err error) bool {
	return sqlState(err) == codeCheckViolation
}

// IsNumericOutOfRange reports a value too large for its numeric column.
func IsNumericOutOfRange(err error) bool {
	return sqlState(err) == codeNumericOutOfRange
}

// IsInvalidValue reports a write the schema rejected because of a column
// value rather than a relation to another row.
func IsInvalidValue(err error) bool {
	return IsCheckViolation(err) || IsNumericOutOfRange(err)
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
