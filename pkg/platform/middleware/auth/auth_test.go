package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/requestcontext"
)

type stubVerifier struct {
	identity domain.Identity
	err      error
	calls    int
}

func (s *stubVerifier) Verify(string) (domain.Identity, error) {
	s.calls++
	return s.identity, s.err
}

func serve(t *testing.T, verifier TokenVerifier, header string) (*httptest.ResponseRecorder, *domain.Identity) {
	t.Helper()
	var seen *domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requestcontext.Identity(r.Context())
		require.True(t, ok)
		seen = &identity
		w.WriteHeader(http.StatusOK)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/employee", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	RequireAuth(verifier, logger)(next).ServeHTTP(w, req)
	return w, seen
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing header is 401 and verifier is not called", func(t *testing.T) {
		v := &stubVerifier{}
		w, seen := serve(t, v, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, seen)
		assert.Zero(t, v.calls)
	})

	t.Run("non-bearer scheme is 401", func(t *testing.T) {
		w, _ := serve(t, &stubVerifier{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Access Denied: Malformed Header", body["message"])
	})

	t.Run("empty bearer token is 401", func(t *testing.T) {
		w, _ := serve(t, &stubVerifier{}, "Bearer ")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is 403", func(t *testing.T) {
		v := &stubVerifier{err: dErrors.New(dErrors.CodeInvalidToken, "invalid token")}
		w, seen := serve(t, v, "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("missing secret is 500", func(t *testing.T) {
		v := &stubVerifier{err: dErrors.New(dErrors.CodeConfiguration, "signing secret is not configured")}
		w, _ := serve(t, v, "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("valid token stores identity", func(t *testing.T) {
		want := domain.Identity{ID: 7, Name: "Ada", Role: domain.RoleAdmin}
		w, seen := serve(t, &stubVerifier{identity: want}, "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, want, *seen)
	})
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "bearer abc", "Bearer", "Bearer a b", "Token abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
