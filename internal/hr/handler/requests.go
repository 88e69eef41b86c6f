package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"employeeapp/internal/hr/models"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

const maxNameLength = 255

// CreateEmployeeRequest is the body of POST /employee.
type CreateEmployeeRequest struct {
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Salary       decimal.Decimal `json:"salary"`
	DepartmentID int64           `json:"departmentId"`
}

// Validate implements httputil.Validatable. Field rules beyond size and
// presence live on models.Employee.
func (r *CreateEmployeeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FirstName) > maxNameLength || len(r.LastName) > maxNameLength || len(r.Email) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "fields must be at most 255 characters")
	}
	if r.DepartmentID < 0 {
		return dErrors.New(dErrors.CodeValidation, "departmentId must be positive")
	}
	return nil
}

func (r *CreateEmployeeRequest) toModel() *models.Employee {
	return &models.Employee{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Salary:       r.Salary,
		DepartmentID: domain.RecordID(r.DepartmentID),
	}
}

// UpdateEmployeeRequest is the body of PUT /employee/{id}. Salary is not
// accepted here; it changes only through PATCH /employee/{id}/salary.
type UpdateEmployeeRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Email        *string `json:"email"`
	DepartmentID *int64  `json:"departmentId"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FirstName == nil && r.LastName == nil && r.Email == nil && r.DepartmentID == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.DepartmentID != nil && *r.DepartmentID < 0 {
		return dErrors.New(dErrors.CodeValidation, "departmentId must be positive")
	}
	return nil
}

func (r *UpdateEmployeeRequest) toChanges() models.EmployeeChanges {
	changes := models.EmployeeChanges{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
	if r.DepartmentID != nil {
		id := domain.RecordID(*r.DepartmentID)
		changes.DepartmentID = &id
	}
	return changes
}

// UpdateSalaryRequest is the body of PATCH /employee/{id}/salary.
type UpdateSalaryRequest struct {
	NewSalary       *decimal.Decimal `json:"newSalary"`
	AmountToCredit  *decimal.Decimal `json:"amountToCredit"`
	LedgerAccountID string           `json:"ledgerAccountId"`
}

func (r *UpdateSalaryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.NewSalary == nil {
		return dErrors.New(dErrors.CodeValidation, "newSalary is required")
	}
	r.LedgerAccountID = strings.TrimSpace(r.LedgerAccountID)
	if len(r.LedgerAccountID) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "ledgerAccountId must be at most 255 characters")
	}
	return nil
}

func (r *UpdateSalaryRequest) toUpdate(id domain.RecordID) models.SalaryUpdate {
	return models.SalaryUpdate{
		EmployeeID:      id,
		NewSalary:       *r.NewSalary,
		AmountToCredit:  r.AmountToCredit,
		LedgerAccountID: r.LedgerAccountID,
	}
}

// CreateDepartmentRequest is the body of POST /department.
type CreateDepartmentRequest struct {
	Name       string `json:"name"`
	BudgetCode string `json:"budgetCode"`
	Location   string `json:"location"`
}

func (r *CreateDepartmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "Department name is required")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 255 characters")
	}
	return nil
}

func (r *CreateDepartmentRequest) toModel() *models.Department {
	return &models.Department{Name: r.Name, BudgetCode: r.BudgetCode, Location: r.Location}
}

// UpdateDepartmentRequest is the body of PUT /department/{id}.
type UpdateDepartmentRequest struct {
	Name       *string `json:"name"`
	BudgetCode *string `json:"budgetCode"`
	Location   *string `json:"location"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.BudgetCode == nil && r.Location == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	return nil
}

func (r *UpdateDepartmentRequest) toChanges() models.DepartmentChanges {
	return models.DepartmentChanges{Name: r.Name, BudgetCode: r.BudgetCode, Location: r.Location}
}
