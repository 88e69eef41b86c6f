package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied once at startup. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT        NOT NULL CHECK (btrim(name) <> ''),
		budget_code TEXT        NOT NULL DEFAULT 'N/A',
		location    TEXT        NOT NULL DEFAULT '',
		owner_id    BIGINT      NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id            BIGSERIAL PRIMARY KEY,
		first_name    TEXT          NOT NULL,
		last_name     TEXT          NOT NULL,
		email         TEXT          NOT NULL UNIQUE,
		salary        NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (salary >= 0),
		department_id BIGINT        REFERENCES departments(id) ON DELETE CASCADE,
		owner_id      BIGINT        NOT NULL,
		created_at    TIMESTAMPTZ   NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS employees_department_id_idx ON employees (department_id)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id          UUID          PRIMARY KEY,
		employee_id BIGINT        NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		account_id  TEXT          NOT NULL,
		amount      NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		request_id  TEXT          NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ledger_entries_employee_id_idx ON ledger_entries (employee_id)`,
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
