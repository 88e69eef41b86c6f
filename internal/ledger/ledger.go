// Package ledger is the financial side of a salary update: a credit check
// and a journal of accepted credits written in the same transaction as the
// salary change.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"employeeapp/pkg/domain"
)

// ErrRejected is returned by a Checker that refuses a credit.
var ErrRejected = errors.New("ledger rejected the credit")

// Checker approves or refuses a credit to an account.
type Checker interface {
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) error
}

// Entry is an accepted credit.
type Entry struct {
	ID         uuid.UUID
	EmployeeID domain.RecordID
	AccountID  string
	Amount     decimal.Decimal
	RequestID  string
	CreatedAt  time.Time
}

// NewEntry builds an entry with a fresh id.
func NewEntry(employeeID domain.RecordID, accountID string, amount decimal.Decimal, requestID string, at time.Time) Entry {
	return Entry{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		AccountID:  accountID,
		Amount:     amount,
		RequestID:  requestID,
		CreatedAt:  at.UTC(),
	}
}

// Journal records accepted credits. Implementations bound to a transaction
// make the entry durable only when the transaction commits.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
}

// DefaultAccount is the account credited when a request names none.
func DefaultAccount(employeeID domain.RecordID) string {
	return "payroll:" + employeeID.String()
}

// Simulated stands in for an external ledger. It refuses negative amounts,
// blank accounts and, when MaxCredit is positive, credits above it.
type Simulated struct {
	MaxCredit decimal.Decimal
}

// NewSimulated returns a Simulated checker. A zero maxCredit disables the ceiling.
func NewSimulated(maxCredit decimal.Decimal) *Simulated {
	return &Simulated{MaxCredit: maxCredit}
}

func (s *Simulated) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("%w: account is required", ErrRejected)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount %s is negative", ErrRejected, amount)
	}
	if s.MaxCredit.IsPositive() && amount.GreaterThan(s.MaxCredit) {
		return fmt.Errorf("%w: amount %s exceeds limit %s", ErrRejected, amount, s.MaxCredit)
	}
	return nil
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, accountID string, amount decimal.Decimal) error

func (f CheckerFunc) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	return f(ctx, accountID, amount)
}
