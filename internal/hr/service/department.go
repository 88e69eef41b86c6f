package service

import (
	"context"
	"log/slog"

	"employeeapp/internal/hr/metrics"
	"employeeapp/internal/hr/models"
	"employeeapp/internal/hr/ports"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/requestcontext"
)

// DepartmentService manages departments. Deleting a department deletes its
// employees.
type DepartmentService struct {
	departments ports.DepartmentStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewDepartmentService(departments ports.DepartmentStore, opts ...Option) *DepartmentService {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DepartmentService{departments: departments, logger: cfg.logger, metrics: cfg.metrics}
}

func (s *DepartmentService) Create(ctx context.Context, department *models.Department) (*models.Department, error) {
	identity, ok := requestcontext.Identity(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Access Denied: No Token Provided")
	}
	department.Normalize()
	if err := department.Validate(); err != nil {
		return nil, err
	}
	department.OwnerID = identity.ID
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, translate(err, "department", "create")
	}
	s.metrics.IncDepartmentsCreated()
	s.logger.InfoContext(ctx, "department created",
		"department_id", department.ID.String(),
		"owner_id", identity.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return department, nil
}

func (s *DepartmentService) Get(ctx context.Context, id domain.RecordID) (*models.Department, error) {
	d, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "department", "load")
	}
	return d, nil
}

func (s *DepartmentService) List(ctx context.Context) ([]*models.Department, error) {
	list, err := s.departments.List(ctx)
	if err != nil {
		return nil, translate(err, "departments", "list")
	}
	return list, nil
}

func (s *DepartmentService) Update(ctx context.Context, id domain.RecordID, changes models.DepartmentChanges) (*models.Department, error) {
	current, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "department", "load")
	}
	changes.Apply(current)
	current.Normalize()
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, current); err != nil {
		return nil, translate(err, "department", "update")
	}
	return current, nil
}

func (s *DepartmentService) Delete(ctx context.Context, id domain.RecordID) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return translate(err, "department", "delete")
	}
	s.metrics.IncDepartmentsDeleted()
	s.logger.InfoContext(ctx, "department deleted",
		"department_id", id.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// OwnerOf returns the owner of a department for the authorization gate.
func (s *DepartmentService) OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error) {
	return s.departments.OwnerOf(ctx, id)
}
