package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

// Employee is an HR record. Salary is only changed through the salary
// transaction; every other field through the regular update path.
type Employee struct {
	ID           domain.RecordID
	FirstName    string
	LastName     string
	Email        string
	Salary       decimal.Decimal
	DepartmentID domain.RecordID
	OwnerID      domain.RecordID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName is "<first> <last>".
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Normalize trims names and lowercases the email.
func (e *Employee) Normalize() {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
}

// Validate enforces the record invariants the database also checks.
func (e *Employee) Validate() error {
	if e.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "first name is required")
	}
	if e.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "last name is required")
	}
	if e.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(e.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if err := ValidateSalary(e.Salary); err != nil {
		return err
	}
	return nil
}

// moneyScale and maxMoney mirror the NUMERIC(14,2) money columns.
const moneyScale = 2

var maxMoney = decimal.New(1, 12)

// ValidateSalary rejects salaries the money columns cannot hold exactly.
func ValidateSalary(salary decimal.Decimal) error {
	return validateMoney("salary", salary)
}

func validateMoney(field string, v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return dErrors.New(dErrors.CodeValidation, field+" must not be negative")
	case !v.Equal(v.Round(moneyScale)):
		return dErrors.New(dErrors.CodeValidation, field+" must have at most 2 decimal places")
	case v.GreaterThanOrEqual(maxMoney):
		return dErrors.New(dErrors.CodeValidation, field+" must be less than "+maxMoney.String())
	}
	return nil
}

// EmployeeChanges carries the non-salary fields of an update. Nil fields are
// left untouched.
type EmployeeChanges struct {
	FirstName    *string
	LastName     *string
	Email        *string
	DepartmentID *domain.RecordID
}

// Apply copies the set fields onto e.
func (c EmployeeChanges) Apply(e *Employee) {
	if c.FirstName != nil {
		e.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		e.LastName = *c.LastName
	}
	if c.Email != nil {
		e.Email = *c.Email
	}
	if c.DepartmentID != nil {
		e.DepartmentID = *c.DepartmentID
	}
}
