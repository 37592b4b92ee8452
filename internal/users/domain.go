package users

import "time"

// RoleRef is the slice of a role carried on user representations.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a user account for management.
type User struct {
	ID        int64
	Email     string
	IsActive  bool
	Roles     []RoleRef
	CreatedAt time.Time
	UpdatedAt time.Time
}
