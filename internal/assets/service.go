package assets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voli-hq/voli/internal/shared"
)

const defaultPageSize = 100

// UserDirectory answers whether a user account exists. Implemented by the
// rbac repository.
type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Service implements asset lifecycle rules.
type Service struct {
	repo  Repository
	users UserDirectory
}

// NewService constructs a Service.
func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// Patch carries partial asset updates. Nil fields are left unchanged.
type Patch struct {
	Name         *string
	Description  *string
	Status       *Status
	SerialNumber *string
	PurchaseDate *time.Time
	AssigneeID   *int64
}

// Create stores a new asset. An empty status defaults to available.
func (s *Service) Create(ctx context.Context, a Asset) (Asset, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return Asset{}, fmt.Errorf("%w: asset name is required", shared.ErrValidation)
	}
	if a.Status == "" {
		a.Status = StatusAvailable
	}
	if !a.Status.Valid() {
		return Asset{}, fmt.Errorf("%w: unknown asset status %q", shared.ErrValidation, a.Status)
	}
	return s.repo.Create(ctx, a)
}

// Get fetches an asset by id.
func (s *Service) Get(ctx context.Context, id int64) (Asset, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns assets.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Asset, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	return s.repo.List(ctx, limit, max(offset, 0))
}

// Update applies a partial update. Setting an assignee moves the asset to
// assigned; clearing the assignee keeps whatever status the caller chose.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Asset, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Asset{}, err
	}
	if patch.Name != nil {
		a.Name = strings.TrimSpace(*patch.Name)
		if a.Name == "" {
			return Asset{}, fmt.Errorf("%w: asset name is required", shared.ErrValidation)
		}
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.SerialNumber != nil {
		a.SerialNumber = *patch.SerialNumber
	}
	if patch.PurchaseDate != nil {
		a.PurchaseDate = patch.PurchaseDate
	}
	if patch.AssigneeID != nil {
		if *patch.AssigneeID == 0 {
			a.AssigneeID = nil
		} else {
			if err := s.requireUser(ctx, *patch.AssigneeID); err != nil {
				return Asset{}, err
			}
			a.AssigneeID = patch.AssigneeID
			a.Status = StatusAssigned
		}
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return Asset{}, fmt.Errorf("%w: unknown asset status %q", shared.ErrValidation, *patch.Status)
		}
		a.Status = *patch.Status
	}
	return s.repo.Update(ctx, a)
}

// Assign hands the asset to a user and marks it assigned.
func (s *Service) Assign(ctx context.Context, assetID, userID int64) (Asset, error) {
	a, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return Asset{}, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return Asset{}, err
	}
	a.AssigneeID = &userID
	a.Status = StatusAssigned
	return s.repo.Update(ctx, a)
}

// Delete removes an asset by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	return nil
}
