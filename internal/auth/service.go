package auth

import (
	"context"
	"log/slog"

	"employeeapp/pkg/domain"
	dErrors "employeeapp/pkg/domain-errors"
	"employeeapp/pkg/requestcontext"
)

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

// ErrUnknownOperator is returned for usernames missing from the directory.
var ErrUnknownOperator = dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")

// Service authenticates operators and issues their tokens.
type Service struct {
	directory *Directory
	issuer    TokenIssuer
	logger    *slog.Logger
}

func NewService(directory *Directory, issuer TokenIssuer, logger *slog.Logger) *Service {
	return &Service{directory: directory, issuer: issuer, logger: logger}
}

// Login returns a signed token for username. A missing signing secret
// surfaces as the issuer's configuration error.
func (s *Service) Login(ctx context.Context, username string) (string, error) {
	requestID := requestcontext.RequestID(ctx)
	identity, ok := s.directory.Lookup(username)
	if !ok {
		s.logger.WarnContext(ctx, "login rejected: unknown operator",
			"request_id", requestID,
		)
		return "", ErrUnknownOperator
	}

	token, err := s.issuer.Issue(identity)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeConfiguration) {
			s.logger.ErrorContext(ctx, "token signing is not configured",
				"request_id", requestID,
				"error", err,
			)
			return "", err
		}
		s.logger.ErrorContext(ctx, "failed to issue token",
			"identity_id", identity.ID.String(),
			"request_id", requestID,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "Failed to generate authentication token.")
	}

	s.logger.InfoContext(ctx, "token issued",
		"identity_id", identity.ID.String(),
		"request_id", requestID,
	)
	return token, nil
}
