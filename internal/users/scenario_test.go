package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voli-hq/voli/internal/auth"
	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/rbac"
	"github.com/voli-hq/voli/internal/shared"
)

// credDirectory adapts the map-backed user repo into the credential store
// read by the authorization gate.
type credDirectory struct {
	repo *mockUserRepo
}

func (d *credDirectory) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	id, ok := d.repo.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d.FindByID(ctx, id)
}

func (d *credDirectory) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := d.repo.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &auth.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: d.repo.hashes[u.ID],
		IsActive:     u.IsActive,
	}, nil
}

var _ auth.Repository = (*credDirectory)(nil)

// TestAccountLifecycle walks one account from registration to deletion
// through the real role and token services.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()

	roleRepo := newMockRoleRepo()
	roles := rbac.NewService(roleRepo, "user")
	require.NoError(t, roles.EnsureRolesExist(ctx, map[string]string{
		rbac.AdminRole: "System administrator",
		"user":         "Default application user",
	}))

	repo := newMockUserRepo(roleRepo)
	usersSvc := NewService(repo, roles, nil, nil)

	codec, err := auth.NewCodec("lifecycle-secret", "HS256", time.Minute)
	require.NoError(t, err)
	gate := auth.NewService(&credDirectory{repo: repo}, codec, roles, nil, nil)

	// Registration grants the baseline role automatically.
	alice, err := usersSvc.Register(ctx, "alice@example.com", "hunter2hunter2", contacts.Contact{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
	})
	require.NoError(t, err)
	require.Len(t, alice.Roles, 1)
	require.Equal(t, "user", alice.Roles[0].Name)

	// The baseline role cannot be revoked, and the failed attempt leaves
	// the ledger untouched.
	baseline, err := roles.GetRoleByName(ctx, "user")
	require.NoError(t, err)
	_, err = roles.RevokeRole(ctx, alice.ID, baseline.ID)
	assert.True(t, errors.Is(err, shared.ErrPolicyViolation))
	names, err := roles.RoleNamesForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, names)

	// A token minted before promotion carries the old snapshot and never
	// clears the administrator gate.
	stale, err := gate.IssueToken(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = usersSvc.AssignAdmin(ctx, []int64{alice.ID})
	require.NoError(t, err)

	_, err = gate.AuthorizeToken(ctx, stale, []string{rbac.AdminRole})
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	// A fresh token picks up the promotion.
	fresh, err := gate.IssueToken(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	authorized, err := gate.AuthorizeToken(ctx, fresh, []string{rbac.AdminRole})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, authorized.ID)

	// Deleting the account kills every outstanding token.
	deleted, err := usersSvc.DeleteUsers(ctx, []int64{alice.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, err = gate.AuthenticateToken(ctx, fresh)
	assert.True(t, errors.Is(err, shared.ErrUnauthenticated))
}
