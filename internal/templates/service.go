package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/voli-hq/voli/internal/shared"
)

// Service handles task template business logic.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService builds a Service instance. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create stores a new template after validating its field schema.
func (s *Service) Create(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	if err := validateSchema(tpl); err != nil {
		return TaskTemplate{}, err
	}
	return s.repo.Create(ctx, tpl)
}

// Get fetches a template through the cache.
func (s *Service) Get(ctx context.Context, id int64) (TaskTemplate, error) {
	return s.cache.Fetch(ctx, id, func(ctx context.Context) (TaskTemplate, error) {
		return s.repo.Get(ctx, id)
	})
}

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]TaskTemplate, error) {
	return s.repo.List(ctx)
}

// Update rewrites a template and invalidates its cache entry.
func (s *Service) Update(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	if err := validateSchema(tpl); err != nil {
		return TaskTemplate{}, err
	}
	updated, err := s.repo.Update(ctx, tpl)
	if err != nil {
		return TaskTemplate{}, err
	}
	s.cache.Invalidate(ctx, tpl.ID)
	return updated, nil
}

// Delete removes a template and invalidates its cache entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// ValidateCustomData checks task custom data against a template's schema:
// every required field must be present.
func ValidateCustomData(custom map[string]any, schema []FieldSpec) error {
	var missing []string
	for _, field := range schema {
		if !field.Required {
			continue
		}
		if _, ok := custom[field.Name]; !ok {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required custom fields: %s", shared.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func validateSchema(tpl TaskTemplate) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return fmt.Errorf("%w: template name required", shared.ErrValidation)
	}
	for _, field := range tpl.FieldsSchema {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("%w: field name required in schema", shared.ErrValidation)
		}
	}
	return nil
}
