package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"employeeapp/internal/platform/postgres"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/platform/tx"
)

// PostgresJournal writes entries through the transaction bound to ctx, or
// through db when none is bound.
type PostgresJournal struct {
	db *sql.DB
}

// NewPostgresJournal constructs a PostgreSQL-backed journal.
func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) Append(ctx context.Context, entry Entry) error {
	_, err := tx.ExecutorFrom(ctx, j.db).ExecContext(ctx, `
		INSERT INTO ledger_entries (id, employee_id, account_id, amount, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, int64(entry.EmployeeID), entry.AccountID, entry.Amount, entry.RequestID, entry.CreatedAt,
	)
	if postgres.IsInvalidValue(err) {
		return fmt.Errorf("append ledger entry: %w", sentinel.ErrInvalidValue)
	}
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByEmployee returns the entries for one employee, oldest first.
func (j *PostgresJournal) ListByEmployee(ctx context.Context, employeeID domain.RecordID) ([]Entry, error) {
	rows, err := tx.ExecutorFrom(ctx, j.db).QueryContext(ctx, `
		SELECT id, employee_id, account_id, amount, request_id, created_at
		FROM ledger_entries
		WHERE employee_id = $1
		ORDER BY created_at, id`, int64(employeeID))
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e   Entry
			emp int64
		)
		if err := rows.Scan(&e.ID, &emp, &e.AccountID, &e.Amount, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.EmployeeID = domain.RecordID(emp)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
