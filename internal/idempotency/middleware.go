package idempotency

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/platform/httputil"
	"employeeapp/pkg/requestcontext"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"

	DefaultLockTTL     = 60 * time.Second
	DefaultResponseTTL = 24 * time.Hour

	maxKeyLength = 255
)

// Guard is the idempotency middleware.
type Guard struct {
	store       Store
	logger      *slog.Logger
	metrics     *Metrics
	lockTTL     time.Duration
	responseTTL time.Duration
}

type Option func(*Guard)

func WithLockTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.lockTTL = ttl
		}
	}
}

func WithResponseTTL(ttl time.Duration) Option {
	return func(g *Guard) {
		if ttl > 0 {
			g.responseTTL = ttl
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

func NewGuard(store Store, logger *slog.Logger, opts ...Option) *Guard {
	g := &Guard{
		store:       store,
		logger:      logger,
		lockTTL:     DefaultLockTTL,
		responseTTL: DefaultResponseTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware applies to POST, PUT and PATCH requests that carry the header.
//
// A stored response is replayed with 200. A duplicate that finds the key
// locked gets 409. Otherwise the request runs and, when its status is below
// 500, the response is kept for responseTTL. Store faults are logged and the
// request runs unguarded.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guarded(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		raw := r.Header.Get(HeaderKey)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(raw) > maxKeyLength {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Idempotency-Key must be at most 255 characters"))
			return
		}

		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		key := scopedKey(ctx, r, raw)

		if g.replay(ctx, w, key, requestID) {
			return
		}

		locked, err := g.store.Lock(ctx, key, g.lockTTL)
		if err != nil {
			g.storeFault(ctx, "lock", err, requestID)
			next.ServeHTTP(w, r)
			return
		}
		if !locked {
			g.metrics.observe(OutcomeInFlight)
			g.logger.WarnContext(ctx, "duplicate request in flight",
				"request_id", requestID,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "Request already in progress. Please wait."))
			return
		}
		defer func() {
			if err := g.store.Unlock(context.WithoutCancel(ctx), key); err != nil {
				g.storeFault(ctx, "unlock", err, requestID)
			}
		}()

		// The first request may have finished between Load and Lock.
		if g.replay(ctx, w, key, requestID) {
			return
		}

		rec := &capture{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status >= http.StatusInternalServerError {
			return
		}
		resp := Response{Status: rec.status, ContentType: rec.Header().Get("Content-Type"), Body: rec.body.Bytes()}
		if err := g.store.Save(context.WithoutCancel(ctx), key, resp, g.responseTTL); err != nil {
			g.storeFault(ctx, "save", err, requestID)
			return
		}
		g.metrics.observe(OutcomeStored)
	})
}

func (g *Guard) replay(ctx context.Context, w http.ResponseWriter, key, requestID string) bool {
	cached, err := g.store.Load(ctx, key)
	if err != nil {
		g.storeFault(ctx, "load", err, requestID)
		return false
	}
	if cached == nil {
		return false
	}
	g.metrics.observe(OutcomeReplayed)
	g.logger.InfoContext(ctx, "idempotent response replayed",
		"original_status", cached.Status,
		"request_id", requestID,
	)
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cached.Body)
	return true
}

func (g *Guard) storeFault(ctx context.Context, op string, err error, requestID string) {
	g.metrics.observe(OutcomeStoreError)
	g.logger.ErrorContext(ctx, "idempotency store failed",
		"op", op,
		"error", err,
		"request_id", requestID,
	)
}

func guarded(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// scopedKey keeps one caller's keys from colliding with another's and with
// the same key sent to a different route.
func scopedKey(ctx context.Context, r *http.Request, raw string) string {
	owner := "anonymous"
	if identity, ok := requestcontext.Identity(ctx); ok && !identity.ID.IsZero() {
		owner = identity.ID.String()
	}
	return owner + ":" + r.Method + ":" + r.URL.Path + ":" + raw
}

type capture struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (c *capture) WriteHeader(code int) {
	if !c.wroteHeader {
		c.status = code
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *capture) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.wroteHeader = true
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
