package contacts

import "time"

// Contact is a person's contact profile, optionally linked to a user account.
type Contact struct {
	ID                     int64
	FirstName              string
	MiddleName             string
	LastName               string
	PreferredName          string
	Email                  string
	PersonalEmail          string
	PhoneNumber            string
	SecondaryPhoneNumber   string
	DateOfBirth            *time.Time
	Gender                 string
	PostalAddress          string
	MembershipID           string
	OrganizationalUnit     string
	Region                 string
	USINumber              string
	PreferredContactMethod string
	BlueCardNumber         string
	LicenseNumber          string
	Notes                  string
	UserID                 *int64
}
