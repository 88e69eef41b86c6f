// Package authz decides whether a caller may act on a resource.
//
// The predicate is pure. The middleware wraps it for chi routes: it resolves
// the owner of the {id} in the URL and answers every failure with the same
// 403 body so callers cannot discover which records exist.
package authz

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	request "employeeapp/pkg/platform/middleware/request"
	"employeeapp/pkg/requestcontext"
)

// ErrForbidden is the uniform authorization failure.
var ErrForbidden = dErrors.New(dErrors.CodeForbidden, "Forbidden: You do not have permission to access this resource")

// Authorize allows identity when it owns the resource or holds the Admin role.
func Authorize(identity domain.Identity, ownerID domain.RecordID) error {
	if identity.IsAdmin() {
		return nil
	}
	if !identity.ID.IsZero() && identity.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// OwnerResolver returns the owner of the resource with the given id.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error)
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(ctx context.Context, id domain.RecordID) (domain.RecordID, error)

func (f OwnerResolverFunc) OwnerOf(ctx context.Context, id domain.RecordID) (domain.RecordID, error) {
	return f(ctx, id)
}

// RequireOwnerOrAdmin guards routes carrying the URL parameter param.
//
// Admins pass without a lookup, so a missing record is reported by the handler
// as 404. For everyone else a missing record, an unparsable id, a store fault
// or a resolver panic all become 403.
func RequireOwnerOrAdmin(resolver OwnerResolver, param string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			identity, ok := requestcontext.Identity(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Access Denied: No Token Provided"))
				return
			}
			if identity.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, err := resolveOwner(ctx, resolver, chi.URLParam(r, param))
			if err == nil {
				err = Authorize(identity, ownerID)
			}
			if err != nil {
				logger.WarnContext(ctx, "authorization denied",
					"identity_id", identity.ID.String(),
					"resource_id", chi.URLParam(r, param),
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveOwner(ctx context.Context, resolver OwnerResolver, raw string) (owner domain.RecordID, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("owner resolver panicked: %v", rec)
		}
	}()
	id, err := domain.ParseRecordID(raw)
	if err != nil {
		return 0, err
	}
	return resolver.OwnerOf(ctx, id)
}
