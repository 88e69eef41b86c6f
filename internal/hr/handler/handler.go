// Package handler exposes the employee and department endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"employeeapp/internal/hr/models"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	"employeeapp/pkg/requestcontext"
)

// EmployeeService defines the employee operations the handler needs.
type EmployeeService interface {
	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	Get(ctx context.Context, id domain.RecordID) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	Update(ctx context.Context, id domain.RecordID, changes models.EmployeeChanges) (*models.Employee, error)
	Delete(ctx context.Context, id domain.RecordID) error
	UpdateSalary(ctx context.Context, update models.SalaryUpdate) (*models.SalaryResult, error)
}

// DepartmentService defines the department operations the handler needs.
type DepartmentService interface {
	Create(ctx context.Context, department *models.Department) (*models.Department, error)
	Get(ctx context.Context, id domain.RecordID) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, id domain.RecordID, changes models.DepartmentChanges) (*models.Department, error)
	Delete(ctx context.Context, id domain.RecordID) error
}

// Guards are the per-route middleware supplied by the router. Nil fields
// pass requests through.
type Guards struct {
	EmployeeOwner   func(http.Handler) http.Handler
	DepartmentOwner func(http.Handler) http.Handler
	Idempotent      func(http.Handler) http.Handler
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// Handler wires HR endpoints to the employee and department services.
type Handler struct {
	employees   EmployeeService
	departments DepartmentService
	logger      *slog.Logger
}

func New(employees EmployeeService, departments DepartmentService, logger *slog.Logger) *Handler {
	return &Handler{employees: employees, departments: departments, logger: logger}
}

// Register mounts the HR routes. The caller is expected to have applied
// authentication already.
func (h *Handler) Register(r chi.Router, g Guards) {
	employeeOwner := orPass(g.EmployeeOwner)
	departmentOwner := orPass(g.DepartmentOwner)
	idempotent := orPass(g.Idempotent)

	r.Route("/employee", func(r chi.Router) {
		r.Get("/", h.HandleListEmployees)
		r.With(idempotent).Post("/", h.HandleCreateEmployee)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(employeeOwner)
			r.Get("/", h.HandleGetEmployee)
			r.Put("/", h.HandleUpdateEmployee)
			r.Delete("/", h.HandleDeleteEmployee)
			r.With(idempotent).Patch("/salary", h.HandleUpdateSalary)
		})
	})

	r.Route("/department", func(r chi.Router) {
		r.Get("/", h.HandleListDepartments)
		r.With(idempotent).Post("/", h.HandleCreateDepartment)
		r.Get("/{id}", h.HandleGetDepartment)
		r.With(departmentOwner).Put("/{id}", h.HandleUpdateDepartment)
		r.With(departmentOwner).Delete("/{id}", h.HandleDeleteDepartment)
	})
}

// HandleListEmployees handles GET /employee.
func (h *Handler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	list, err := h.employees.List(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to list employees", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmployeeList(list))
}

// HandleCreateEmployee handles POST /employee.
func (h *Handler) HandleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateEmployeeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.employees.Create(ctx, req.toModel())
	if err != nil {
		h.fail(ctx, w, "failed to create employee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

func (h *Handler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.employees.Get(r.Context(), id)
	if err != nil {
		h.fail(r.Context(), w, "failed to load employee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmployeeResponse(e))
}

func (h *Handler) HandleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateEmployeeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	updated, err := h.employees.Update(ctx, id, req.toChanges())
	if err != nil {
		h.fail(ctx, w, "failed to update employee", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmployeeResponse(updated))
}

func (h *Handler) HandleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.employees.Delete(r.Context(), id); err != nil {
		h.fail(r.Context(), w, "failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateSalary handles PATCH /employee/{id}/salary.
func (h *Handler) HandleUpdateSalary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateSalaryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.employees.UpdateSalary(ctx, req.toUpdate(id))
	if err != nil {
		h.fail(ctx, w, "salary update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSalaryResponse(result))
}

func (h *Handler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := h.departments.List(r.Context())
	if err != nil {
		h.fail(r.Context(), w, "failed to list departments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDepartmentList(list))
}

func (h *Handler) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateDepartmentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	created, err := h.departments.Create(ctx, req.toModel())
	if err != nil {
		h.fail(ctx, w, "failed to create department", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDepartmentResponse(created))
}

func (h *Handler) HandleGetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.departments.Get(r.Context(), id)
	if err != nil {
		h.fail(r.Context(), w, "failed to load department", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDepartmentResponse(d))
}

func (h *Handler) HandleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateDepartmentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	updated, err := h.departments.Update(ctx, id, req.toChanges())
	if err != nil {
		h.fail(ctx, w, "failed to update department", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDepartmentResponse(updated))
}

// HandleDeleteDepartment handles DELETE /department/{id}; its employees go with it.
func (h *Handler) HandleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.departments.Delete(r.Context(), id); err != nil {
		h.fail(r.Context(), w, "failed to delete department", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (domain.RecordID, bool) {
	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// fail logs at a level matching the error class and writes the response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
	if httputil.StatusFor(codeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func codeOf(err error) dErrors.Code {
	if de, ok := dErrors.As(err); ok {
		return de.Code
	}
	return dErrors.CodeInternal
}
