package templates

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voli-hq/voli/internal/shared"
)

type mockRepo struct {
	templates map[int64]TaskTemplate
	byName    map[string]int64
	nextID    int64
	getCalls  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{templates: make(map[int64]TaskTemplate), byName: make(map[string]int64), nextID: 1}
}

func (m *mockRepo) Create(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	if _, ok := m.byName[tpl.Name]; ok {
		return TaskTemplate{}, shared.ErrConflict
	}
	tpl.ID = m.nextID
	m.nextID++
	m.templates[tpl.ID] = tpl
	m.byName[tpl.Name] = tpl.ID
	return tpl, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (TaskTemplate, error) {
	m.getCalls++
	tpl, ok := m.templates[id]
	if !ok {
		return TaskTemplate{}, shared.ErrNotFound
	}
	return tpl, nil
}

func (m *mockRepo) List(ctx context.Context) ([]TaskTemplate, error) {
	out := make([]TaskTemplate, 0, len(m.templates))
	for _, tpl := range m.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (m *mockRepo) Update(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	old, ok := m.templates[tpl.ID]
	if !ok {
		return TaskTemplate{}, shared.ErrNotFound
	}
	delete(m.byName, old.Name)
	m.templates[tpl.ID] = tpl
	m.byName[tpl.Name] = tpl.ID
	return tpl, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	tpl, ok := m.templates[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.byName, tpl.Name)
	delete(m.templates, id)
	return nil
}

var _ Repository = (*mockRepo)(nil)

func newCachedService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute))
}

func TestCreateValidatesSchema(t *testing.T) {
	svc := newCachedService(t, newMockRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, TaskTemplate{Name: "  "})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = svc.Create(ctx, TaskTemplate{
		Name:         "Event shift",
		FieldsSchema: []FieldSpec{{Name: "", Type: "string"}},
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	tpl, err := svc.Create(ctx, TaskTemplate{
		Name:         "Event shift",
		FieldsSchema: []FieldSpec{{Name: "location", Type: "string", Required: true}},
	})
	require.NoError(t, err)
	assert.NotZero(t, tpl.ID)

	_, err = svc.Create(ctx, TaskTemplate{Name: "Event shift"})
	assert.True(t, errors.Is(err, shared.ErrConflict))
}

func TestGetReadsThroughCache(t *testing.T) {
	repo := newMockRepo()
	svc := newCachedService(t, repo)
	ctx := context.Background()

	tpl, err := svc.Create(ctx, TaskTemplate{
		Name:         "Event shift",
		FieldsSchema: []FieldSpec{{Name: "location", Type: "string", Required: true}},
	})
	require.NoError(t, err)

	first, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	second, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.getCalls, "second read must be served from cache")
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := newMockRepo()
	svc := newCachedService(t, repo)
	ctx := context.Background()

	tpl, err := svc.Create(ctx, TaskTemplate{Name: "Event shift"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, tpl.ID)
	require.NoError(t, err)

	tpl.Description = "updated"
	_, err = svc.Update(ctx, tpl)
	require.NoError(t, err)

	got, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Description)
}

func TestDeleteInvalidatesCache(t *testing.T) {
	repo := newMockRepo()
	svc := newCachedService(t, repo)
	ctx := context.Background()

	tpl, err := svc.Create(ctx, TaskTemplate{Name: "Event shift"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, tpl.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tpl.ID))

	_, err = svc.Get(ctx, tpl.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestCacheDegradesWithoutRedis(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, NewCache(nil, time.Minute))
	ctx := context.Background()

	tpl, err := svc.Create(ctx, TaskTemplate{Name: "Event shift"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl, got)
}

func TestValidateCustomData(t *testing.T) {
	schema := []FieldSpec{
		{Name: "location", Type: "string", Required: true},
		{Name: "shift_start", Type: "datetime", Required: true},
		{Name: "notes", Type: "string", Required: false},
	}

	err := ValidateCustomData(map[string]any{"location": "Depot", "shift_start": "2026-09-01T09:00:00Z"}, schema)
	require.NoError(t, err)

	err = ValidateCustomData(map[string]any{"location": "Depot"}, schema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.Contains(t, err.Error(), "shift_start")

	// Optional fields may be absent; unknown extras are accepted.
	err = ValidateCustomData(map[string]any{"location": "Depot", "shift_start": "x", "extra": 1}, schema)
	require.NoError(t, err)
}
