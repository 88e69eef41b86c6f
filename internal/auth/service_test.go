package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "employeeapp/internal/jwt_token"
	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

var rowland = Operator{
	Username: "admin",
	Identity: domain.Identity{ID: 1, Name: "Rowland", Role: domain.RoleAdmin},
}

func newService(secret string) (*Service, *jwttoken.JWTService) {
	tokens := jwttoken.NewJWTService(secret, "employeeapp", time.Hour)
	return NewService(NewDirectory(rowland), tokens, slog.New(slog.NewTextHandler(io.Discard, nil))), tokens
}

func TestLogin(t *testing.T) {
	t.Run("known operator gets a verifiable token", func(t *testing.T) {
		svc, tokens := newService("test-secret")
		token, err := svc.Login(context.Background(), "  Admin ")
		require.NoError(t, err)

		identity, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, rowland.Identity, identity)
	})

	t.Run("unknown operator is unauthorized", func(t *testing.T) {
		svc, _ := newService("test-secret")
		_, err := svc.Login(context.Background(), "mallory")
		assert.ErrorIs(t, err, ErrUnknownOperator)
	})

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		svc, _ := newService("")
		_, err := svc.Login(context.Background(), "admin")
		assert.True(t, dErrors.Is(err, dErrors.CodeConfiguration))
	})

	t.Run("signing failure is internal", func(t *testing.T) {
		failing := issuerFunc(func(domain.Identity) (string, error) { return "", errors.New("hsm offline") })
		svc := NewService(NewDirectory(rowland), failing, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := svc.Login(context.Background(), "admin")
		assert.ErrorIs(t, err, dErrors.New(dErrors.CodeInternal, "Failed to generate authentication token."))
	})
}

func TestDirectorySkipsIncompleteOperators(t *testing.T) {
	d := NewDirectory(
		Operator{Username: " ", Identity: domain.Identity{ID: 2, Name: "Blank"}},
		Operator{Username: "ghost"},
		rowland,
	)
	_, ok := d.Lookup("ghost")
	assert.False(t, ok)
	_, ok = d.Lookup("")
	assert.False(t, ok)
	got, ok := d.Lookup("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, domain.RecordID(1), got.ID)
}

type issuerFunc func(domain.Identity) (string, error)

func (f issuerFunc) Issue(identity domain.Identity) (string, error) { return f(identity) }
