package models

import (
	"strings"
	"time"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

// DefaultBudgetCode is stored when a department is created without one.
const DefaultBudgetCode = "N/A"

// Department groups employees. Deleting one deletes its employees.
type Department struct {
	ID         domain.RecordID
	Name       string
	BudgetCode string
	Location   string
	OwnerID    domain.RecordID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize trims fields and applies the budget code default.
func (d *Department) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.BudgetCode = strings.TrimSpace(d.BudgetCode)
	d.Location = strings.TrimSpace(d.Location)
	if d.BudgetCode == "" {
		d.BudgetCode = DefaultBudgetCode
	}
}

func (d *Department) Validate() error {
	if d.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "Department name is required")
	}
	return nil
}

// DepartmentChanges carries an update. Nil fields are left untouched.
type DepartmentChanges struct {
	Name       *string
	BudgetCode *string
	Location   *string
}

func (c DepartmentChanges) Apply(d *Department) {
	if c.Name != nil {
		d.Name = *c.Name
	}
	if c.BudgetCode != nil {
		d.BudgetCode = *c.BudgetCode
	}
	if c.Location != nil {
		d.Location = *c.Location
	}
}
