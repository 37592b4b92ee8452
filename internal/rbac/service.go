package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voli-hq/voli/internal/shared"
)

// Service orchestrates the role registry and the assignment ledger.
type Service struct {
	repo         Repository
	baselineRole string
}

// NewService constructs a Service. baselineRole is the configured role name
// every user must retain; the protection re-resolves it by name at call time.
func NewService(repo Repository, baselineRole string) *Service {
	return &Service{repo: repo, baselineRole: baselineRole}
}

// BaselineRole returns the configured baseline role name.
func (s *Service) BaselineRole() string {
	return s.baselineRole
}

// CreateRole registers a new role. Names are free-text but must be non-empty
// after trimming; duplicates fail with shared.ErrConflict.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// ListRoles returns all registered roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRoleByName resolves a role by its unique name.
func (s *Service) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}

// GrantRole assigns a role to a user and returns the refreshed role set.
// Granting an already-held role is a no-op success.
func (s *Service) GrantRole(ctx context.Context, userID, roleID int64) ([]Role, error) {
	if err := s.requireUserAndRole(ctx, userID, roleID); err != nil {
		return nil, err
	}
	if err := s.repo.Grant(ctx, userID, roleID); err != nil {
		return nil, err
	}
	return s.repo.RolesForUser(ctx, userID)
}

// RevokeRole removes a role from a user and returns the refreshed role set.
// Revoking the configured baseline role fails with shared.ErrPolicyViolation
// before any mutation, regardless of who asks. Revoking a role the user does
// not hold fails with shared.ErrNotFound.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID int64) ([]Role, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.Name == s.baselineRole {
		return nil, fmt.Errorf("%w: cannot revoke the baseline role %q", shared.ErrPolicyViolation, s.baselineRole)
	}
	affected, err := s.repo.Revoke(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, shared.ErrNotFound
	}
	return s.repo.RolesForUser(ctx, userID)
}

// RolesForUser returns the user's current role set.
func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	return s.repo.RolesForUser(ctx, userID)
}

// RoleNamesForUser returns just the role names, for embedding into tokens.
func (s *Service) RoleNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.Name
	}
	return names, nil
}

// EnsureRolesExist seeds roles at startup. It is create-or-ignore-conflict:
// the registry's uniqueness constraint is the race guard, so concurrent
// seeding never check-then-creates duplicates.
func (s *Service) EnsureRolesExist(ctx context.Context, roles map[string]string) error {
	for name, description := range roles {
		if _, err := s.CreateRole(ctx, name, description); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				continue
			}
			return fmt.Errorf("rbac: ensure role %q: %w", name, err)
		}
	}
	return nil
}

// EnsureGranted grants a role by name, creating it first when missing. Used
// for baseline-role assignment at registration and for administrator
// promotion.
func (s *Service) EnsureGranted(ctx context.Context, userID int64, name, description string) ([]Role, error) {
	role, err := s.repo.GetRoleByName(ctx, name)
	if errors.Is(err, shared.ErrNotFound) {
		role, err = s.CreateRole(ctx, name, description)
		if errors.Is(err, shared.ErrConflict) {
			// Lost a seeding race; the role exists now.
			role, err = s.repo.GetRoleByName(ctx, name)
		}
	}
	if err != nil {
		return nil, err
	}
	return s.GrantRole(ctx, userID, role.ID)
}

func (s *Service) requireUserAndRole(ctx context.Context, userID, roleID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	return nil
}
