package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voli-hq/voli/internal/shared"
	"github.com/voli-hq/voli/internal/templates"
)

const defaultPageSize = 100

// TemplateSource resolves task templates for custom data validation.
type TemplateSource interface {
	Get(ctx context.Context, id int64) (templates.TaskTemplate, error)
}

// Service implements task lifecycle rules.
type Service struct {
	repo      Repository
	templates TemplateSource
}

// NewService constructs a Service.
func NewService(repo Repository, tpls TemplateSource) *Service {
	return &Service{repo: repo, templates: tpls}
}

// Patch carries partial task updates. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	DueDate     *time.Time
	CustomData  map[string]any
}

// Create stores a new task for its owner. When a template is referenced, the
// custom data must satisfy the template's required fields.
func (s *Service) Create(ctx context.Context, t Task) (Task, error) {
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !t.Status.Valid() {
		return Task{}, fmt.Errorf("%w: unknown task status %q", shared.ErrValidation, t.Status)
	}
	if t.TemplateID != nil {
		tpl, err := s.templates.Get(ctx, *t.TemplateID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Task{}, fmt.Errorf("%w: task template %d", shared.ErrNotFound, *t.TemplateID)
			}
			return Task{}, err
		}
		if t.CustomData != nil {
			if err := templates.ValidateCustomData(t.CustomData, tpl.FieldsSchema); err != nil {
				return Task{}, err
			}
		}
	}
	return s.repo.Create(ctx, t)
}

// Get fetches a task the actor is allowed to see.
func (s *Service) Get(ctx context.Context, actor Actor, id int64) (Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !actor.CanAccess(t) {
		return Task{}, shared.ErrForbidden
	}
	return t, nil
}

// ListOwn returns the owner's tasks.
func (s *Service) ListOwn(ctx context.Context, ownerID int64, limit, offset int) ([]Task, error) {
	return s.repo.ListByOwner(ctx, ownerID, clampPage(limit), max(offset, 0))
}

// ListAll returns every task.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]Task, error) {
	return s.repo.ListAll(ctx, clampPage(limit), max(offset, 0))
}

// Update applies a partial update after the ownership check. New custom data
// is revalidated against the task's template.
func (s *Service) Update(ctx context.Context, actor Actor, id int64, patch Patch) (Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !actor.CanAccess(t) {
		return Task{}, shared.ErrForbidden
	}
	if patch.CustomData != nil && t.TemplateID != nil {
		tpl, err := s.templates.Get(ctx, *t.TemplateID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return Task{}, err
		}
		if err == nil {
			if err := templates.ValidateCustomData(patch.CustomData, tpl.FieldsSchema); err != nil {
				return Task{}, err
			}
		}
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return Task{}, fmt.Errorf("%w: unknown task status %q", shared.ErrValidation, *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.CustomData != nil {
		t.CustomData = patch.CustomData
	}
	return s.repo.Update(ctx, t)
}

// Delete removes a task the actor is allowed to mutate.
func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(t) {
		return shared.ErrForbidden
	}
	return s.repo.Delete(ctx, t.ID)
}

func clampPage(limit int) int {
	if limit <= 0 || limit > defaultPageSize {
		return defaultPageSize
	}
	return limit
}
