// Package service holds the HR use cases: employee and department
// management and the transactional salary update.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"employeeapp/internal/hr/metrics"
	"employeeapp/internal/hr/models"
	"employeeapp/internal/hr/ports"
	"employeeapp/internal/ledger"
	"employeeapp/internal/notify"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/sentinel"
	"employeeapp/pkg/requestcontext"
)

// MsgFinancialSyncFailed is the message of every failed salary transaction
// other than validation and not-found.
const MsgFinancialSyncFailed = "Financial sync failed."

// EmployeeService orchestrates employee records and salary updates.
type EmployeeService struct {
	employees   ports.EmployeeStore
	departments ports.DepartmentStore
	tx          ports.StoreTx
	checker     ledger.Checker
	notifier    ports.Notifier

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(
	employees ports.EmployeeStore,
	departments ports.DepartmentStore,
	tx ports.StoreTx,
	checker ledger.Checker,
	notifier ports.Notifier,
	opts ...Option,
) *EmployeeService {
	cfg := config{logger: slog.Default(), tracer: otel.Tracer("employeeapp/hr"), now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &EmployeeService{
		employees:   employees,
		departments: departments,
		tx:          tx,
		checker:     checker,
		notifier:    notifier,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		tracer:      cfg.tracer,
		now:         cfg.now,
	}
}

// Create stores a new employee owned by the caller and notifies
// EMPLOYEE_CREATED once the row exists.
func (s *EmployeeService) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	identity, ok := requestcontext.Identity(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Access Denied: No Token Provided")
	}
	employee.Normalize()
	if err := employee.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireDepartment(ctx, employee.DepartmentID); err != nil {
		return nil, err
	}
	employee.OwnerID = identity.ID

	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, translate(err, "employee", "create")
	}
	s.metrics.IncEmployeesCreated()
	s.logger.InfoContext(ctx, "employee created",
		"employee_id", employee.ID.String(),
		"owner_id", identity.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.notifier.Notify(ctx, subjectOf(employee), notify.ActionEmployeeCreated)
	return employee, nil
}

func (s *EmployeeService) Get(ctx context.Context, id domain.RecordID) (*models.Employee, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "employee", "load")
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	list, err := s.employees.List(ctx)
	if err != nil {
		return nil, translate(err, "employees", "list")
	}
	return list, nil
}

// Update changes the non-salary fields of an employee.
func (s *EmployeeService) Update(ctx context.Context, id domain.RecordID, changes models.EmployeeChanges) (*models.Employee, error) {
	current, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "employee", "load")
	}
	changes.Apply(current)
	current.Normalize()
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if changes.DepartmentID != nil {
		if err := s.requireDepartment(ctx, current.DepartmentID); err != nil {
			return nil, err
		}
	}
	if err := s.employees.Update(ctx, current); err != nil {
		return nil, translate(err, "employee", "update")
	}
	return current, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id domain.RecordID) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return translate(err, "employee", "delete")
	}
	s.logger.InfoContext(ctx, "employee deleted",
		"employee_id", id.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// OwnerOf returns the owner of an employee for the authorization gate.
func (s *EmployeeService) OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error) {
	return s.employees.OwnerOf(ctx, id)
}

func (s *EmployeeService) requireDepartment(ctx context.Context, id domain.RecordID) error {
	if id.IsZero() || s.departments == nil {
		return nil
	}
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "department does not exist")
		}
		return translate(err, "department", "load")
	}
	return nil
}

// UpdateSalary changes a salary and credits the ledger in one transaction.
//
// Input is validated before the transaction opens. Inside it the employee row
// is locked, the salary written, the ledger asked for the credit and the
// accepted credit journaled; any failure rolls all of it back. The request's
// cancellation does not reach the transaction. The notification is sent only
// after a successful commit.
func (s *EmployeeService) UpdateSalary(ctx context.Context, update models.SalaryUpdate) (*models.SalaryResult, error) {
	started := time.Now()
	requestID := requestcontext.RequestID(ctx)
	if err := update.Validate(); err != nil {
		s.metrics.ObserveSalaryUpdate(metrics.OutcomeInvalid, started)
		return nil, err
	}
	account := update.Account()
	amount := update.Amount()

	txCtx, span := s.tracer.Start(context.WithoutCancel(ctx), "hr.UpdateSalary", trace.WithAttributes(
		attribute.Int64("employee.id", int64(update.EmployeeID)),
		attribute.String("ledger.account", account),
	))
	defer span.End()

	var committed *models.Employee
	err := s.tx.RunInTx(txCtx, func(ctx context.Context, stores ports.TxStores) error {
		employee, err := stores.Employees.FindByIDForUpdate(ctx, update.EmployeeID)
		if err != nil {
			return err
		}
		// Writes are stamped once the row lock is held, not at request arrival.
		ctx = requestcontext.WithTime(ctx, s.now())
		employee.Salary = update.NewSalary
		if err := stores.Employees.Save(ctx, employee); err != nil {
			return err
		}
		if err := s.checker.Credit(ctx, account, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeLedgerRejected, MsgFinancialSyncFailed)
		}
		entry := ledger.NewEntry(employee.ID, account, amount, requestID, requestcontext.Now(ctx))
		if err := stores.Journal.Append(ctx, entry); err != nil {
			return err
		}
		committed = employee
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "salary update rolled back")
		return nil, s.salaryFailure(ctx, update.EmployeeID, started, err)
	}

	s.metrics.ObserveSalaryUpdate(metrics.OutcomeCommitted, started)
	s.logger.InfoContext(ctx, "salary updated",
		"employee_id", committed.ID.String(),
		"ledger_account", account,
		"amount", amount.String(),
		"request_id", requestID,
	)
	s.notifier.Notify(ctx, subjectOf(committed), notify.ActionSalaryDisbursed)

	return &models.SalaryResult{Employee: committed, AccountID: account, Amount: amount}, nil
}

func (s *EmployeeService) salaryFailure(ctx context.Context, id domain.RecordID, started time.Time, err error) error {
	requestID := requestcontext.RequestID(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.ObserveSalaryUpdate(metrics.OutcomeNotFound, started)
		return dErrors.Wrap(err, dErrors.CodeNotFound, "Employee not found")
	case errors.Is(err, sentinel.ErrInvalidValue):
		s.metrics.ObserveSalaryUpdate(metrics.OutcomeInvalid, started)
		return dErrors.Wrap(err, dErrors.CodeValidation, "salary or credit amount is outside the allowed range")
	case dErrors.HasCode(err, dErrors.CodeLedgerRejected):
		s.metrics.ObserveSalaryUpdate(metrics.OutcomeLedgerRejected, started)
		s.logger.WarnContext(ctx, "ledger rejected salary credit",
			"employee_id", id.String(),
			"error", err,
			"request_id", requestID,
		)
		return err
	default:
		s.metrics.ObserveSalaryUpdate(metrics.OutcomeFailed, started)
		s.logger.ErrorContext(ctx, "salary transaction failed",
			"employee_id", id.String(),
			"error", err,
			"request_id", requestID,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, MsgFinancialSyncFailed)
	}
}

func subjectOf(e *models.Employee) notify.Subject {
	return notify.Subject{
		EmployeeID: e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Salary:     e.Salary,
	}
}
