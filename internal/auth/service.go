package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/voli-hq/voli/internal/observability"
	"github.com/voli-hq/voli/internal/shared"
)

// RoleSource supplies the role-name snapshot embedded into freshly issued
// tokens. Implemented by the rbac service.
type RoleSource interface {
	RoleNamesForUser(ctx context.Context, userID int64) ([]string, error)
}

// Service wraps credential verification, token issuance and the
// authorization gate.
type Service struct {
	repo    Repository
	codec   *Codec
	roles   RoleSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService constructs a new Service. Logger and metrics may be nil.
func NewService(repo Repository, codec *Codec, roles RoleSource, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, codec: codec, roles: roles, logger: logger, metrics: metrics}
}

// IssueToken verifies credentials and returns a signed access token carrying
// the subject email and a snapshot of the user's current roles. All failure
// modes collapse into shared.ErrInvalidCredentials so a caller cannot probe
// which input was wrong.
func (s *Service) IssueToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", shared.ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return "", shared.ErrInvalidCredentials
	}
	roleNames, err := s.roles.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	return s.codec.Encode(user.Email, roleNames, 0)
}

// AuthenticateToken decodes a bearer token and re-resolves its subject against
// the credential store. The returned user is the live record, not the token
// claims: an account removed after issuance invalidates the token immediately
// even though it has not expired.
func (s *Service) AuthenticateToken(ctx context.Context, raw string) (*User, error) {
	user, _, err := s.authenticate(ctx, raw)
	return user, err
}

// AuthorizeToken authenticates and then requires that the token's embedded
// role snapshot contains at least one of the required roles. Role membership
// is deliberately judged against the snapshot, not the live ledger; only
// account existence is re-checked.
func (s *Service) AuthorizeToken(ctx context.Context, raw string, required []string) (*User, error) {
	user, claims, err := s.authenticate(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !holdsAny(claims.Roles, required) {
		s.countFailure("forbidden")
		return nil, shared.ErrForbidden
	}
	return user, nil
}

func (s *Service) authenticate(ctx context.Context, raw string) (*User, *Claims, error) {
	if raw == "" {
		s.countFailure("missing")
		return nil, nil, shared.ErrUnauthenticated
	}
	claims, err := s.codec.Decode(raw)
	if err != nil {
		s.logDecodeFailure(err)
		return nil, nil, shared.ErrUnauthenticated
	}
	user, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.countFailure("subject_gone")
			return nil, nil, shared.ErrUnauthenticated
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// logDecodeFailure records why a token was rejected without ever logging the
// token itself.
func (s *Service) logDecodeFailure(err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, ErrTokenExpired):
		reason = "expired"
	case errors.Is(err, ErrTokenSignature):
		reason = "signature"
	}
	s.countFailure(reason)
	s.logger.Debug("token rejected", slog.String("reason", reason))
}

func (s *Service) countFailure(reason string) {
	if s.metrics != nil {
		s.metrics.CountAuthFailure(reason)
	}
}

func holdsAny(held, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(held))
	for _, r := range held {
		set[r] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
