package ledger

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeeapp/pkg/platform/tx"
)

func TestSimulatedCredit(t *testing.T) {
	ctx := context.Background()
	capped := NewSimulated(decimal.RequireFromString("1000"))
	uncapped := NewSimulated(decimal.Zero)

	assert.NoError(t, capped.Credit(ctx, "payroll:1", decimal.RequireFromString("1000")))
	assert.NoError(t, uncapped.Credit(ctx, "payroll:1", decimal.RequireFromString("99999999")))
	assert.NoError(t, capped.Credit(ctx, "payroll:1", decimal.Zero))

	assert.ErrorIs(t, capped.Credit(ctx, "payroll:1", decimal.RequireFromString("1000.01")), ErrRejected)
	assert.ErrorIs(t, capped.Credit(ctx, "payroll:1", decimal.RequireFromString("-1")), ErrRejected)
	assert.ErrorIs(t, capped.Credit(ctx, "  ", decimal.RequireFromString("1")), ErrRejected)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, capped.Credit(cancelled, "payroll:1", decimal.RequireFromString("1")), context.Canceled)
}

func TestDefaultAccount(t *testing.T) {
	assert.Equal(t, "payroll:42", DefaultAccount(42))
}

func TestStagedJournalFlushesOnlyOnRequest(t *testing.T) {
	ctx := context.Background()
	target := NewMemoryJournal()
	staged := NewStagedJournal(target)

	require.NoError(t, staged.Append(ctx, NewEntry(3, "payroll:3", decimal.RequireFromString("10"), "req-1", time.Now())))
	entries, _ := target.ListByEmployee(ctx, 3)
	assert.Empty(t, entries)

	require.NoError(t, staged.Flush(ctx))
	entries, _ = target.ListByEmployee(ctx, 3)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].RequestID)
}

type anyUUID struct{}

func (anyUUID) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func TestPostgresJournalUsesBoundTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entry := NewEntry(7, "payroll:7", decimal.RequireFromString("5000.00"), "req-9", time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(anyUUID{}, int64(7), "payroll:7", sqlmock.AnyArg(), "req-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sqlTx, err := db.Begin()
	require.NoError(t, err)
	ctx := tx.WithTx(context.Background(), sqlTx)

	require.NoError(t, NewPostgresJournal(db).Append(ctx, entry))
	require.NoError(t, sqlTx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJournalWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO ledger_entries").WillReturnError(errors.New("disk full"))

	err = NewPostgresJournal(db).Append(context.Background(), NewEntry(1, "a", decimal.Zero, "", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append ledger entry")
}
