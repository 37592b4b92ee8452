package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voli-hq/voli/internal/shared"
	"github.com/voli-hq/voli/internal/templates"
)

type mockTaskRepo struct {
	tasks  map[int64]Task
	nextID int64
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int64]Task), nextID: 1}
}

func (m *mockTaskRepo) Create(ctx context.Context, t Task) (Task, error) {
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = t
	return t, nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) ListAll(ctx context.Context, limit, offset int) ([]Task, error) {
	out := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, t Task) (Task, error) {
	if _, ok := m.tasks[t.ID]; !ok {
		return Task{}, shared.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	m.tasks[t.ID] = t
	return t, nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

var _ Repository = (*mockTaskRepo)(nil)

type staticTemplates map[int64]templates.TaskTemplate

func (s staticTemplates) Get(ctx context.Context, id int64) (templates.TaskTemplate, error) {
	tpl, ok := s[id]
	if !ok {
		return templates.TaskTemplate{}, shared.ErrNotFound
	}
	return tpl, nil
}

func shiftTemplate() staticTemplates {
	return staticTemplates{
		1: {
			ID:   1,
			Name: "Event shift",
			FieldsSchema: []templates.FieldSpec{
				{Name: "location", Type: "string", Required: true},
			},
		},
	}
}

func int64ptr(v int64) *int64 { return &v }

func TestCreateDefaultsToPending(t *testing.T) {
	svc := NewService(newMockTaskRepo(), shiftTemplate())

	task, err := svc.Create(context.Background(), Task{Title: "Set up marquee", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, task.Status)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockTaskRepo(), shiftTemplate())

	_, err := svc.Create(context.Background(), Task{Title: "x", OwnerID: 1, Status: "paused"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestCreateValidatesTemplateCustomData(t *testing.T) {
	svc := NewService(newMockTaskRepo(), shiftTemplate())
	ctx := context.Background()

	// Unknown template.
	_, err := svc.Create(ctx, Task{Title: "x", OwnerID: 1, TemplateID: int64ptr(42)})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	// Missing required field.
	_, err = svc.Create(ctx, Task{
		Title: "x", OwnerID: 1, TemplateID: int64ptr(1),
		CustomData: map[string]any{"notes": "none"},
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	// Satisfied schema.
	task, err := svc.Create(ctx, Task{
		Title: "x", OwnerID: 1, TemplateID: int64ptr(1),
		CustomData: map[string]any{"location": "Depot"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Depot", task.CustomData["location"])
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	task, err := svc.Create(ctx, Task{Title: "x", OwnerID: 1})
	require.NoError(t, err)

	_, err = svc.Get(ctx, Actor{ID: 1}, task.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, Actor{ID: 2}, task.ID)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, err = svc.Get(ctx, Actor{ID: 2, Admin: true}, task.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, Actor{ID: 1}, 999)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestUpdateMergesPatch(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	task, err := svc.Create(ctx, Task{Title: "Set up marquee", Description: "before", OwnerID: 1})
	require.NoError(t, err)

	status := StatusCompleted
	title := "Pack down marquee"
	updated, err := svc.Update(ctx, Actor{ID: 1}, task.ID, Patch{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Pack down marquee", updated.Title)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, "before", updated.Description)
}

func TestUpdateRevalidatesCustomData(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	task, err := svc.Create(ctx, Task{
		Title: "x", OwnerID: 1, TemplateID: int64ptr(1),
		CustomData: map[string]any{"location": "Depot"},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, Actor{ID: 1}, task.ID, Patch{
		CustomData: map[string]any{"notes": "dropped the location"},
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	updated, err := svc.Update(ctx, Actor{ID: 1}, task.ID, Patch{
		CustomData: map[string]any{"location": "Hall"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hall", updated.CustomData["location"])
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	task, err := svc.Create(ctx, Task{Title: "x", OwnerID: 1})
	require.NoError(t, err)

	title := "hijacked"
	_, err = svc.Update(ctx, Actor{ID: 2}, task.ID, Patch{Title: &title})
	assert.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	task, err := svc.Create(ctx, Task{Title: "x", OwnerID: 1})
	require.NoError(t, err)

	err = svc.Delete(ctx, Actor{ID: 2}, task.ID)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	err = svc.Delete(ctx, Actor{ID: 2, Admin: true}, task.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, Actor{ID: 1}, task.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestListOwnFiltersByOwner(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewService(repo, shiftTemplate())
	ctx := context.Background()

	_, err := svc.Create(ctx, Task{Title: "mine", OwnerID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Task{Title: "theirs", OwnerID: 2})
	require.NoError(t, err)

	own, err := svc.ListOwn(ctx, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "mine", own[0].Title)

	all, err := svc.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
