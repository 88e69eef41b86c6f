//go:build integration

package employee_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"employeeapp/internal/hr/models"
	"employeeapp/internal/hr/ports"
	"employeeapp/internal/hr/store/department"
	"employeeapp/internal/hr/store/employee"
	"employeeapp/internal/ledger"
	"employeeapp/pkg/domain"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
	"employeeapp/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg          *containers.PostgresContainer
	store       *employee.PostgresStore
	departments *department.PostgresStore
	journal     *ledger.PostgresJournal
	tx          *employee.PostgresTx
	ctx         context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = employee.NewPostgres(s.pg.DB)
	s.departments = department.NewPostgres(s.pg.DB)
	s.journal = ledger.NewPostgresJournal(s.pg.DB)
	s.tx = employee.NewPostgresTx(s.pg.DB, s.store, s.journal)
	s.ctx = requestcontext.WithIdentity(context.Background(), domain.Identity{ID: 1, Name: "Rowland", Role: domain.RoleAdmin})
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "ledger_entries", "employees", "departments"))
}

func (s *PostgresStoreSuite) newEmployee(email string) *models.Employee {
	e := &models.Employee{FirstName: "Ada", LastName: "Lovelace", Email: email, Salary: decimal.NewFromInt(1000), OwnerID: 1}
	s.Require().NoError(s.store.Create(s.ctx, e))
	s.Require().NotZero(e.ID)
	return e
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	created := s.newEmployee("ada@example.com")

	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", found.Email)
	s.True(found.Salary.Equal(decimal.NewFromInt(1000)))
	s.Equal(domain.RecordID(1), found.OwnerID)

	_, err = s.store.FindByID(s.ctx, 9999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsConflict() {
	s.newEmployee("ada@example.com")
	err := s.store.Create(s.ctx, &models.Employee{FirstName: "A", LastName: "L", Email: "ada@example.com", OwnerID: 1})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestTxCommitsSalaryAndJournal() {
	e := s.newEmployee("ada@example.com")

	err := s.tx.RunInTx(s.ctx, func(ctx context.Context, stores ports.TxStores) error {
		locked, err := stores.Employees.FindByIDForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		locked.Salary = decimal.RequireFromString("4200.50")
		if err := stores.Employees.Save(ctx, locked); err != nil {
			return err
		}
		return stores.Journal.Append(ctx, ledger.NewEntry(e.ID, ledger.DefaultAccount(e.ID), locked.Salary, "req-1", requestcontext.Now(ctx)))
	})
	s.Require().NoError(err)

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.True(found.Salary.Equal(decimal.RequireFromString("4200.50")))
	entries, err := s.journal.ListByEmployee(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PostgresStoreSuite) TestTxRollsBackOnError() {
	e := s.newEmployee("ada@example.com")
	rejected := errors.New("ledger rejected")

	err := s.tx.RunInTx(s.ctx, func(ctx context.Context, stores ports.TxStores) error {
		locked, err := stores.Employees.FindByIDForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		locked.Salary = decimal.NewFromInt(9000)
		if err := stores.Employees.Save(ctx, locked); err != nil {
			return err
		}
		return rejected
	})
	s.ErrorIs(err, rejected)

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.True(found.Salary.Equal(decimal.NewFromInt(1000)))
	entries, err := s.journal.ListByEmployee(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *PostgresStoreSuite) TestConcurrentSalaryWritersSerialize() {
	e := s.newEmployee("ada@example.com")
	const writers = 10

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.RunInTx(s.ctx, func(ctx context.Context, stores ports.TxStores) error {
				locked, err := stores.Employees.FindByIDForUpdate(ctx, e.ID)
				if err != nil {
					return err
				}
				locked.Salary = locked.Salary.Add(decimal.NewFromInt(1))
				return stores.Employees.Save(ctx, locked)
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(s.ctx, e.ID)
	s.Require().NoError(err)
	s.True(found.Salary.Equal(decimal.NewFromInt(1000+writers)), "got %s", found.Salary)
}

func (s *PostgresStoreSuite) TestDepartmentDeleteCascades() {
	d := &models.Department{Name: "Finance", BudgetCode: "N/A", OwnerID: 1}
	s.Require().NoError(s.departments.Create(s.ctx, d))

	e := &models.Employee{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DepartmentID: d.ID, OwnerID: 1}
	s.Require().NoError(s.store.Create(s.ctx, e))

	s.Require().NoError(s.departments.Delete(s.ctx, d.ID))
	_, err := s.store.FindByID(s.ctx, e.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
