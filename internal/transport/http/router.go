// Package httptransport assembles the process-wide router: shared middleware,
// health checks and the authenticated resource groups.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authHandler "employeeapp/internal/auth/handler"
	"employeeapp/internal/authz"
	hrHandler "employeeapp/internal/hr/handler"
	"employeeapp/internal/idempotency"
	"employeeapp/internal/platform/metrics"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	authmw "employeeapp/pkg/platform/middleware/auth"
	"employeeapp/pkg/platform/middleware/cors"
	request "employeeapp/pkg/platform/middleware/request"
	"employeeapp/pkg/platform/middleware/requesttime"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router mounts.
type Deps struct {
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	Verifier         authmw.TokenVerifier
	CORSOrigins      []string
	Auth             *authHandler.Handler
	HR               *hrHandler.Handler
	EmployeeOwners   authz.OwnerResolver
	DepartmentOwners authz.OwnerResolver
	Idempotency      *idempotency.Guard
	HealthChecks     map[string]HealthCheck
}

type statusResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(cors.Allow(d.CORSOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Employee API is live"})
		})
		r.Get("/health", health(d.HealthChecks, d.Logger))

		if d.Auth != nil {
			d.Auth.Register(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(d.Verifier, d.Logger))
			guards := hrHandler.Guards{}
			if d.EmployeeOwners != nil {
				guards.EmployeeOwner = authz.RequireOwnerOrAdmin(d.EmployeeOwners, "id", d.Logger)
			}
			if d.DepartmentOwners != nil {
				guards.DepartmentOwner = authz.RequireOwnerOrAdmin(d.DepartmentOwners, "id", d.Logger)
			}
			if d.Idempotency != nil {
				guards.Idempotent = d.Idempotency.Middleware
			}
			d.HR.Register(r, guards)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
		})
	})
	return r
}

// health answers 200 while every check passes and 503 otherwise.
func health(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed",
					"check", name,
					"error", err,
					"request_id", request.GetRequestID(r.Context()),
				)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
