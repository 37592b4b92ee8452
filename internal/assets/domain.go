package assets

import "time"

// Status is the lifecycle state of an asset.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusAssigned    Status = "assigned"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

// Asset is a piece of tracked equipment, optionally assigned to a user.
type Asset struct {
	ID           int64
	Name         string
	Description  string
	Status       Status
	SerialNumber string
	PurchaseDate *time.Time
	AssigneeID   *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
