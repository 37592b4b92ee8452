package rbac

import "time"

// Role represents a named permission grouping. Names are unique; one name is
// designated by configuration as the baseline role that every registered user
// holds and can never lose.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRole links a user to a role. The (UserID, RoleID) pair is unique in the
// ledger; the database constraint is the backstop against double-insert races.
type UserRole struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}
