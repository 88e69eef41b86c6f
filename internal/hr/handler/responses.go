package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"employeeapp/internal/hr/models"
)

// MsgSalaryUpdated is returned by a committed salary update.
const MsgSalaryUpdated = "Salary and Ledger updated successfully"

// EmployeeResponse is the JSON form of an employee.
type EmployeeResponse struct {
	ID           int64           `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Salary       decimal.Decimal `json:"salary"`
	DepartmentID *int64          `json:"departmentId"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toEmployeeResponse(e *models.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:        int64(e.ID),
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Salary:    e.Salary,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if !e.DepartmentID.IsZero() {
		dept := int64(e.DepartmentID)
		resp.DepartmentID = &dept
	}
	return resp
}

func toEmployeeList(list []*models.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEmployeeResponse(e))
	}
	return out
}

// DepartmentResponse is the JSON form of a department.
type DepartmentResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	BudgetCode string    `json:"budgetCode"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toDepartmentResponse(d *models.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:         int64(d.ID),
		Name:       d.Name,
		BudgetCode: d.BudgetCode,
		Location:   d.Location,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toDepartmentList(list []*models.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDepartmentResponse(d))
	}
	return out
}

// SalaryResponse is returned by PATCH /employee/{id}/salary.
type SalaryResponse struct {
	Message         string          `json:"message"`
	EmployeeID      int64           `json:"employeeId"`
	Salary          decimal.Decimal `json:"salary"`
	LedgerAccountID string          `json:"ledgerAccountId"`
	AmountCredited  decimal.Decimal `json:"amountCredited"`
}

func toSalaryResponse(result *models.SalaryResult) SalaryResponse {
	return SalaryResponse{
		Message:         MsgSalaryUpdated,
		EmployeeID:      int64(result.Employee.ID),
		Salary:          result.Employee.Salary,
		LedgerAccountID: result.AccountID,
		AmountCredited:  result.Amount,
	}
}
