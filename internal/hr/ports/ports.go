// Package ports declares the persistence and delivery boundaries of the HR
// services.
package ports

import (
	"context"

	"employeeapp/internal/hr/models"
	"employeeapp/internal/ledger"
	"employeeapp/internal/notify"
	"employeeapp/pkg/domain"
)

// EmployeeStore is the non-transactional employee persistence surface.
type EmployeeStore interface {
	Create(ctx context.Context, employee *models.Employee) error
	FindByID(ctx context.Context, id domain.RecordID) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id domain.RecordID) error
	OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error)
}

// DepartmentStore persists departments. Delete cascades to employees.
type DepartmentStore interface {
	Create(ctx context.Context, department *models.Department) error
	FindByID(ctx context.Context, id domain.RecordID) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id domain.RecordID) error
	OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error)
}

// EmployeeTxStore is the employee surface available inside a transaction.
// FindByIDForUpdate holds the row lock until the transaction ends.
type EmployeeTxStore interface {
	FindByIDForUpdate(ctx context.Context, id domain.RecordID) (*models.Employee, error)
	Save(ctx context.Context, employee *models.Employee) error
}

// TxStores are the stores bound to one transaction scope.
type TxStores struct {
	Employees EmployeeTxStore
	Journal   ledger.Journal
}

// StoreTx provides the transactional boundary for salary updates.
// fn's writes become visible only if fn returns nil and the commit succeeds.
// Implementations may wrap a database transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// Notifier receives committed employee events. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, subject notify.Subject, action string)
}
