package contacts

import (
	"context"

	"github.com/google/uuid"
)

// Service handles contact profile business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new contact, assigning a membership id when none was supplied.
func (s *Service) Create(ctx context.Context, contact Contact) (Contact, error) {
	if contact.MembershipID == "" {
		contact.MembershipID = uuid.NewString()
	}
	return s.repo.Create(ctx, contact)
}

// Get fetches a contact by id.
func (s *Service) Get(ctx context.Context, id int64) (Contact, error) {
	return s.repo.GetByID(ctx, id)
}

// GetForUser fetches the contact linked to a user account.
func (s *Service) GetForUser(ctx context.Context, userID int64) (Contact, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// List returns all contacts.
func (s *Service) List(ctx context.Context) ([]Contact, error) {
	return s.repo.List(ctx)
}

// Update applies non-zero fields from patch to the stored contact.
func (s *Service) Update(ctx context.Context, id int64, patch Contact) (Contact, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Contact{}, err
	}
	merged := merge(current, patch)
	return s.repo.Update(ctx, merged)
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func merge(current, patch Contact) Contact {
	out := current
	if patch.FirstName != "" {
		out.FirstName = patch.FirstName
	}
	if patch.MiddleName != "" {
		out.MiddleName = patch.MiddleName
	}
	if patch.LastName != "" {
		out.LastName = patch.LastName
	}
	if patch.PreferredName != "" {
		out.PreferredName = patch.PreferredName
	}
	if patch.Email != "" {
		out.Email = patch.Email
	}
	if patch.PersonalEmail != "" {
		out.PersonalEmail = patch.PersonalEmail
	}
	if patch.PhoneNumber != "" {
		out.PhoneNumber = patch.PhoneNumber
	}
	if patch.SecondaryPhoneNumber != "" {
		out.SecondaryPhoneNumber = patch.SecondaryPhoneNumber
	}
	if patch.DateOfBirth != nil {
		out.DateOfBirth = patch.DateOfBirth
	}
	if patch.Gender != "" {
		out.Gender = patch.Gender
	}
	if patch.PostalAddress != "" {
		out.PostalAddress = patch.PostalAddress
	}
	if patch.MembershipID != "" {
		out.MembershipID = patch.MembershipID
	}
	if patch.OrganizationalUnit != "" {
		out.OrganizationalUnit = patch.OrganizationalUnit
	}
	if patch.Region != "" {
		out.Region = patch.Region
	}
	if patch.USINumber != "" {
		out.USINumber = patch.USINumber
	}
	if patch.PreferredContactMethod != "" {
		out.PreferredContactMethod = patch.PreferredContactMethod
	}
	if patch.BlueCardNumber != "" {
		out.BlueCardNumber = patch.BlueCardNumber
	}
	if patch.LicenseNumber != "" {
		out.LicenseNumber = patch.LicenseNumber
	}
	if patch.Notes != "" {
		out.Notes = patch.Notes
	}
	return out
}
