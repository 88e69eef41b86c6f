package jwttoken

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
)

// Claims represents the JWT claims for our access tokens.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewJWTService builds the token service. An empty signingKey is accepted so
// the process can start; Issue and Verify then fail with a configuration error.
func NewJWTService(signingKey string, issuer string, ttl time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

var errNoSecret = dErrors.New(dErrors.CodeConfiguration, "server configuration error: JWT secret is not set")

// Issue signs an HS256 token for identity.
func (s *JWTService) Issue(identity domain.Identity) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errNoSecret
	}
	now := s.now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   identity.ID.String(),
		Name: identity.Name,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signedToken, nil
}

// Verify validates signature, algorithm and expiry and returns the embedded
// identity.
func (s *JWTService) Verify(tokenString string) (domain.Identity, error) {
	if len(s.signingKey) == 0 {
		return domain.Identity{}, errNoSecret
	}
	if tokenString == "" {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "Access Denied: No Token Provided")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, dErrors.New(dErrors.CodeInvalidToken, "token has expired")
		}
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidToken, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidToken, "invalid token")
	}

	id, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil || id <= 0 {
		return domain.Identity{}, dErrors.New(dErrors.CodeInvalidToken, "invalid token claims")
	}
	return domain.Identity{ID: domain.RecordID(id), Name: claims.Name, Role: claims.Role}, nil
}
