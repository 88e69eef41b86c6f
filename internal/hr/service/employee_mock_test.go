package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"employeeapp/internal/hr/models"
	"employeeapp/internal/hr/ports"
	"employeeapp/internal/hr/ports/mocks"
	"employeeapp/internal/ledger"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
)

var adminIdentity = domain.Identity{ID: 1, Name: "Rowland", Role: domain.RoleAdmin}

func TestUpdateSalaryStoreFailures(t *testing.T) {
	okCredit := ledger.CheckerFunc(func(context.Context, string, decimal.Decimal) error { return nil })

	t.Run("save failure is reported as financial sync failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		txStore := mocks.NewMockEmployeeTxStore(ctrl)
		storeTx := mocks.NewMockStoreTx(ctrl)
		notifier := mocks.NewMockNotifier(ctrl)

		storeTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context, ports.TxStores) error) error {
				return fn(ctx, ports.TxStores{Employees: txStore, Journal: ledger.NewMemoryJournal()})
			})
		txStore.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any()).Return(&models.Employee{ID: 3}, nil)
		txStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		svc := NewEmployeeService(nil, nil, storeTx, okCredit, notifier)
		_, err := svc.UpdateSalary(context.Background(), models.SalaryUpdate{EmployeeID: 3, NewSalary: decimal.NewFromInt(10)})

		require.Error(t, err)
		assert.ErrorIs(t, err, dErrors.New(dErrors.CodeInternal, MsgFinancialSyncFailed))
		assert.NotContains(t, err.(*dErrors.Error).Message, "connection reset")
	})

	t.Run("value rejected by the store is a validation error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		txStore := mocks.NewMockEmployeeTxStore(ctrl)
		storeTx := mocks.NewMockStoreTx(ctrl)
		notifier := mocks.NewMockNotifier(ctrl)

		storeTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context, ports.TxStores) error) error {
				return fn(ctx, ports.TxStores{Employees: txStore, Journal: ledger.NewMemoryJournal()})
			})
		txStore.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any()).Return(&models.Employee{ID: 3}, nil)
		txStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(fmt.Errorf("save employee salary: %w", sentinel.ErrInvalidValue))
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		svc := NewEmployeeService(nil, nil, storeTx, okCredit, notifier)
		_, err := svc.UpdateSalary(context.Background(), models.SalaryUpdate{EmployeeID: 3, NewSalary: decimal.NewFromInt(10)})
		assert.True(t, dErrors.Is(err, dErrors.CodeValidation))
	})

	t.Run("commit failure after ledger success is not notified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		storeTx := mocks.NewMockStoreTx(ctrl)
		notifier := mocks.NewMockNotifier(ctrl)

		storeTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(errors.New("commit: serialization failure"))
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		svc := NewEmployeeService(nil, nil, storeTx, okCredit, notifier)
		_, err := svc.UpdateSalary(context.Background(), models.SalaryUpdate{EmployeeID: 3, NewSalary: decimal.NewFromInt(10)})
		assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	})

	t.Run("journal failure rolls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		txStore := mocks.NewMockEmployeeTxStore(ctrl)
		storeTx := mocks.NewMockStoreTx(ctrl)
		notifier := mocks.NewMockNotifier(ctrl)
		failing := journalFunc(func(context.Context, ledger.Entry) error { return errors.New("disk full") })

		storeTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, fn func(context.Context, ports.TxStores) error) error {
				return fn(ctx, ports.TxStores{Employees: txStore, Journal: failing})
			})
		txStore.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any()).Return(&models.Employee{ID: 3}, nil)
		txStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		svc := NewEmployeeService(nil, nil, storeTx, okCredit, notifier)
		_, err := svc.UpdateSalary(context.Background(), models.SalaryUpdate{EmployeeID: 3, NewSalary: decimal.NewFromInt(10)})
		assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	})

	t.Run("validation never opens a transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		storeTx := mocks.NewMockStoreTx(ctrl)
		storeTx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Times(0)

		svc := NewEmployeeService(nil, nil, storeTx, okCredit, mocks.NewMockNotifier(ctrl))
		_, err := svc.UpdateSalary(context.Background(), models.SalaryUpdate{EmployeeID: 0, NewSalary: decimal.NewFromInt(10)})
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	})
}

func TestEmployeeStoreErrorsAreTranslated(t *testing.T) {
	ctrl := gomock.NewController(t)
	employees := mocks.NewMockEmployeeStore(ctrl)
	departments := mocks.NewMockDepartmentStore(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	svc := NewEmployeeService(employees, departments, nil, nil, notifier)
	ctx := requestcontext.WithIdentity(context.Background(), adminIdentity)

	employees.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: timeout"))
	_, err := svc.Get(ctx, 1)
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeInternal, "failed to load employee"))

	employees.EXPECT().List(gomock.Any()).Return(nil, sentinel.ErrUnavailable)
	_, err = svc.List(ctx)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))

	departments.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(&models.Department{ID: 2}, nil)
	employees.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrInvalidReference)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	_, err = svc.Create(ctx, &models.Employee{FirstName: "A", LastName: "B", Email: "a@example.com", DepartmentID: 2})
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "department does not exist"))

	err = translate(fmt.Errorf("insert department: %w", sentinel.ErrInvalidValue), "department", "create")
	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, "Department has a value outside the allowed range"))
}

type journalFunc func(ctx context.Context, entry ledger.Entry) error

func (f journalFunc) Append(ctx context.Context, entry ledger.Entry) error { return f(ctx, entry) }
