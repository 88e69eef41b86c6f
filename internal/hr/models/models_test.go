package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	dErrors "employeeapp/pkg/domain-errors"
)

func TestEmployeeValidate(t *testing.T) {
	valid := func() *Employee {
		return &Employee{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Salary: decimal.RequireFromString("100")}
	}

	assert.NoError(t, valid().Validate())

	cases := map[string]func(e *Employee){
		"missing first name": func(e *Employee) { e.FirstName = "" },
		"missing last name":  func(e *Employee) { e.LastName = "" },
		"missing email":      func(e *Employee) { e.Email = "" },
		"invalid email":      func(e *Employee) { e.Email = "not-an-email" },
		"negative salary":    func(e *Employee) { e.Salary = decimal.RequireFromString("-0.01") },
		"salary sub-cent":    func(e *Employee) { e.Salary = decimal.RequireFromString("9000.125") },
		"salary too large":   func(e *Employee) { e.Salary = decimal.RequireFromString("1000000000000") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := valid()
			mutate(e)
			assert.True(t, dErrors.Is(e.Validate(), dErrors.CodeValidation))
		})
	}
}

func TestEmployeeNormalize(t *testing.T) {
	e := &Employee{FirstName: " Ada ", LastName: "Lovelace ", Email: " ADA@Example.com"}
	e.Normalize()
	assert.Equal(t, "Ada Lovelace", e.FullName())
	assert.Equal(t, "ada@example.com", e.Email)
}

func TestDepartmentNormalize(t *testing.T) {
	d := &Department{Name: "  Finance "}
	d.Normalize()
	assert.Equal(t, "Finance", d.Name)
	assert.Equal(t, DefaultBudgetCode, d.BudgetCode)
	assert.NoError(t, d.Validate())

	blank := &Department{Name: "   "}
	blank.Normalize()
	assert.True(t, dErrors.Is(blank.Validate(), dErrors.CodeValidation))
}

func TestSalaryUpdateDefaults(t *testing.T) {
	u := SalaryUpdate{EmployeeID: 9, NewSalary: decimal.RequireFromString("4200")}
	assert.Equal(t, "payroll:9", u.Account())
	assert.True(t, u.Amount().Equal(decimal.RequireFromString("4200")))
	assert.NoError(t, u.Validate())

	credit := decimal.RequireFromString("100")
	u.AmountToCredit = &credit
	u.LedgerAccountID = " acct-1 "
	assert.Equal(t, "acct-1", u.Account())
	assert.True(t, u.Amount().Equal(credit))
}

func TestSalaryUpdateValidate(t *testing.T) {
	negative := decimal.RequireFromString("-5")

	assert.True(t, dErrors.Is(SalaryUpdate{NewSalary: decimal.Zero}.Validate(), dErrors.CodeBadRequest))
	assert.True(t, dErrors.Is(SalaryUpdate{EmployeeID: 1, NewSalary: negative}.Validate(), dErrors.CodeValidation))
	assert.True(t, dErrors.Is(SalaryUpdate{EmployeeID: 1, NewSalary: decimal.Zero, AmountToCredit: &negative}.Validate(), dErrors.CodeValidation))
	assert.NoError(t, SalaryUpdate{EmployeeID: 1, NewSalary: decimal.Zero}.Validate())
}

func TestSalaryUpdateMoneyLimits(t *testing.T) {
	tests := []struct {
		name    string
		salary  string
		credit  string
		wantErr string
	}{
		{name: "two decimal places", salary: "9000.10"},
		{name: "largest storable", salary: "999999999999.99"},
		{name: "trailing zeros are not extra scale", salary: "9000.1000"},
		{name: "salary sub-cent", salary: "9000.125", wantErr: "salary must have at most 2 decimal places"},
		{name: "salary at limit", salary: "1000000000000", wantErr: "salary must be less than 1000000000000"},
		{name: "credit sub-cent", salary: "9000", credit: "0.001", wantErr: "amount to credit must have at most 2 decimal places"},
		{name: "credit too large", salary: "9000", credit: "1000000000000.00", wantErr: "amount to credit must be less than 1000000000000"},
		{name: "credit within limits", salary: "9000", credit: "999999999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := SalaryUpdate{EmployeeID: 1, NewSalary: decimal.RequireFromString(tt.salary)}
			if tt.credit != "" {
				credit := decimal.RequireFromString(tt.credit)
				u.AmountToCredit = &credit
			}
			err := u.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
