package employee

import (
	"context"
	"database/sql"
	"fmt"

	"employeeapp/internal/hr/ports"
	"employeeapp/internal/ledger"
	"employeeapp/pkg/platform/tx"
)

// PostgresTx runs salary transactions at READ COMMITTED. The employee row is
// locked by FindByIDForUpdate, which serializes writers on the same employee.
type PostgresTx struct {
	db        *sql.DB
	employees *PostgresStore
	journal   ledger.Journal
}

func NewPostgresTx(db *sql.DB, employees *PostgresStore, journal ledger.Journal) *PostgresTx {
	return &PostgresTx{db: db, employees: employees, journal: journal}
}

// RunInTx commits when fn returns nil. On an error, a commit failure or a
// panic the transaction is rolled back exactly once; a panic is re-raised.
func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores ports.TxStores) error) (err error) {
	sqlTx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	done := false
	rollback := func() {
		if done {
			return
		}
		done = true
		_ = sqlTx.Rollback()
	}
	defer func() {
		if rec := recover(); rec != nil {
			rollback()
			panic(rec)
		}
		if err != nil {
			rollback()
		}
	}()

	txCtx := tx.WithTx(ctx, sqlTx)
	if err = fn(txCtx, ports.TxStores{Employees: t.employees, Journal: t.journal}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	done = true
	return nil
}
