package contacts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voli-hq/voli/internal/shared"
)

type mockContactRepo struct {
	contacts map[int64]Contact
	byUser   map[int64]int64
	nextID   int64
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[int64]Contact), byUser: make(map[int64]int64), nextID: 1}
}

func (m *mockContactRepo) Create(ctx context.Context, c Contact) (Contact, error) {
	c.ID = m.nextID
	m.nextID++
	m.contacts[c.ID] = c
	if c.UserID != nil {
		m.byUser[*c.UserID] = c.ID
	}
	return c, nil
}

func (m *mockContactRepo) GetByID(ctx context.Context, id int64) (Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return Contact{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockContactRepo) GetByUserID(ctx context.Context, userID int64) (Contact, error) {
	id, ok := m.byUser[userID]
	if !ok {
		return Contact{}, shared.ErrNotFound
	}
	return m.contacts[id], nil
}

func (m *mockContactRepo) List(ctx context.Context) ([]Contact, error) {
	out := make([]Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockContactRepo) Update(ctx context.Context, c Contact) (Contact, error) {
	if _, ok := m.contacts[c.ID]; !ok {
		return Contact{}, shared.ErrNotFound
	}
	m.contacts[c.ID] = c
	return c, nil
}

func (m *mockContactRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.contacts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

var _ Repository = (*mockContactRepo)(nil)

func TestCreateAssignsMembershipID(t *testing.T) {
	svc := NewService(newMockContactRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, Contact{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.MembershipID)
	_, err = uuid.Parse(created.MembershipID)
	assert.NoError(t, err)

	// A supplied membership id is kept.
	kept, err := svc.Create(ctx, Contact{FirstName: "Bob", Email: "bob@example.com", MembershipID: "M-1234"})
	require.NoError(t, err)
	assert.Equal(t, "M-1234", kept.MembershipID)
}

func TestUpdateMergesNonZeroFields(t *testing.T) {
	svc := NewService(newMockContactRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, Contact{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
		Region: "North", Notes: "founding member",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Contact{Region: "South", PhoneNumber: "0400 000 000"})
	require.NoError(t, err)
	assert.Equal(t, "South", updated.Region)
	assert.Equal(t, "0400 000 000", updated.PhoneNumber)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "founding member", updated.Notes)
	assert.Equal(t, created.MembershipID, updated.MembershipID)
}

func TestUpdateUnknownContact(t *testing.T) {
	svc := NewService(newMockContactRepo())

	_, err := svc.Update(context.Background(), 999, Contact{FirstName: "x"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGetForUser(t *testing.T) {
	svc := NewService(newMockContactRepo())
	ctx := context.Background()
	userID := int64(7)

	created, err := svc.Create(ctx, Contact{FirstName: "Alice", Email: "alice@example.com", UserID: &userID})
	require.NoError(t, err)

	got, err := svc.GetForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetForUser(ctx, 999)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
