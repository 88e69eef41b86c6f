package testutil

import (
	"net/http"
	"time"

	"employeeapp/pkg/domain"
	"employeeapp/pkg/requestcontext"
)

// WithIdentity attaches identity the way the auth middleware would.
func WithIdentity(req *http.Request, identity domain.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
