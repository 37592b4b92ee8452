package tasks

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work owned by a user, optionally shaped by a template
// whose fields schema constrains CustomData.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time
	OwnerID     int64
	TemplateID  *int64
	CustomData  map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Actor identifies the requesting user for ownership checks.
type Actor struct {
	ID    int64
	Admin bool
}

// CanAccess reports whether the actor may read or mutate the task.
func (a Actor) CanAccess(t Task) bool {
	return a.Admin || t.OwnerID == a.ID
}
