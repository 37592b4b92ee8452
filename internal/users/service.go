package users

import (
	"context"
	"errors"
	"log/slog"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// Notifier delivers transactional notifications. Delivery failures never fail
// the business operation that triggered them.
type Notifier interface {
	SendWelcome(ctx context.Context, email string) error
}

// Service handles user management business logic.
type Service struct {
	repo     Repository
	roles    *rbac.Service
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds a Service instance. notifier may be nil.
func NewService(repo Repository, roles *rbac.Service, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, roles: roles, notifier: notifier, logger: logger}
}

// Register creates an account with its contact profile, grants the baseline
// role and queues the welcome email. A duplicate email fails with
// shared.ErrConflict before anything is written.
func (s *Service) Register(ctx context.Context, email, password string, contact contacts.Contact) (*User, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Register(ctx, email, passwordHash, contact)
	if err != nil {
		return nil, err
	}
	baseline := s.roles.BaselineRole()
	if _, err := s.roles.EnsureGranted(ctx, user.ID, baseline, "Default application user"); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.SendWelcome(ctx, user.Email); err != nil {
			s.logger.Warn("enqueue welcome email", slog.String("email", user.Email), slog.Any("error", err))
		}
	}
	return s.repo.GetUser(ctx, user.ID)
}

// ListUsers returns all users with roles.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches one user with roles.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// DeleteUsers removes the given accounts. Deleting nothing is ErrNotFound so
// the API can answer 404 for an all-unknown id list.
func (s *Service) DeleteUsers(ctx context.Context, ids []int64) (int64, error) {
	deleted, err := s.repo.DeleteUsers(ctx, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, shared.ErrNotFound
	}
	return deleted, nil
}

// AssignAdmin grants the administrator role to each listed user, creating the
// role if it does not exist yet. Users that already hold it are skipped; if
// nobody was updated the result is ErrNotFound.
func (s *Service) AssignAdmin(ctx context.Context, ids []int64) (int64, error) {
	var updated int64
	for _, id := range ids {
		before, err := s.roles.RoleNamesForUser(ctx, id)
		if err != nil {
			return updated, err
		}
		if containsRole(before, rbac.AdminRole) {
			continue
		}
		if _, err := s.roles.EnsureGranted(ctx, id, rbac.AdminRole, "System administrator"); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return updated, err
		}
		updated++
	}
	if updated == 0 {
		return 0, shared.ErrNotFound
	}
	return updated, nil
}

func containsRole(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
