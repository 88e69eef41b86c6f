package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	request "employeeapp/pkg/platform/middleware/request"
	"employeeapp/pkg/requestcontext"
)

// TokenVerifier validates a bearer token and returns the caller it carries.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
// ok is false for a missing header, another scheme, or an empty token.
func BearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
//
// Missing or malformed headers are 401. Verification failures carry their own
// code: invalid or expired tokens are 403, a missing signing secret is 500.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			header := r.Header.Get("Authorization")
			token, ok := BearerToken(header)
			if !ok {
				msg := "Access Denied: No Token Provided"
				if header != "" {
					msg = "Access Denied: Malformed Header"
				}
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msg))
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				if dErrors.Is(err, dErrors.CodeConfiguration) {
					logger.ErrorContext(ctx, "token verification unavailable",
						"error", err,
						"request_id", requestID,
					)
				} else {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestID,
					)
				}
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
