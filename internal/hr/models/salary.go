package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"employeeapp/internal/ledger"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

// SalaryUpdate is one request to change a salary and credit the ledger.
// A nil AmountToCredit credits the new salary; an empty LedgerAccountID
// credits the employee's payroll account.
type SalaryUpdate struct {
	EmployeeID      domain.RecordID
	NewSalary       decimal.Decimal
	AmountToCredit  *decimal.Decimal
	LedgerAccountID string
}

// Amount is the credit the ledger is asked for.
func (u SalaryUpdate) Amount() decimal.Decimal {
	if u.AmountToCredit != nil {
		return *u.AmountToCredit
	}
	return u.NewSalary
}

// Account is the ledger account credited.
func (u SalaryUpdate) Account() string {
	if account := strings.TrimSpace(u.LedgerAccountID); account != "" {
		return account
	}
	return ledger.DefaultAccount(u.EmployeeID)
}

func (u SalaryUpdate) Validate() error {
	if u.EmployeeID.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "employee id is required")
	}
	if err := ValidateSalary(u.NewSalary); err != nil {
		return err
	}
	return validateMoney("amount to credit", u.Amount())
}

// SalaryResult is the committed outcome of a salary update.
type SalaryResult struct {
	Employee  *Employee
	AccountID string
	Amount    decimal.Decimal
}
