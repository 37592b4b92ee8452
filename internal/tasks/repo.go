package tasks

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voli-hq/voli/internal/shared"
)

// Repository defines persistence operations for tasks.
type Repository interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, id int64) (Task, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Task, error)
	ListAll(ctx context.Context, limit, offset int) ([]Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL. Custom data is stored
// as JSONB.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const taskColumns = `id, title, description, status, due_date, owner_id, template_id, custom_data, created_at, updated_at`

// Create inserts a task.
func (r *PGRepository) Create(ctx context.Context, t Task) (Task, error) {
	custom, err := marshalCustom(t.CustomData)
	if err != nil {
		return Task{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, due_date, owner_id, template_id, custom_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		t.Title, t.Description, t.Status, t.DueDate, t.OwnerID, t.TemplateID, custom,
	)
	return scanTask(row)
}

// GetByID fetches a task by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// ListByOwner returns tasks belonging to a user, newest first.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ListAll returns every task, newest first.
func (r *PGRepository) ListAll(ctx context.Context, limit, offset int) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Update rewrites a task record.
func (r *PGRepository) Update(ctx context.Context, t Task) (Task, error) {
	custom, err := marshalCustom(t.CustomData)
	if err != nil {
		return Task{}, err
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET title=$2, description=$3, status=$4, due_date=$5, template_id=$6,
			custom_data=$7, updated_at=now()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Status, t.DueDate, t.TemplateID, custom,
	)
	return scanTask(row)
}

// Delete removes a task by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func marshalCustom(custom map[string]any) ([]byte, error) {
	if custom == nil {
		return nil, nil
	}
	return json.Marshal(custom)
}

func collectTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		t      Task
		custom []byte
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate,
		&t.OwnerID, &t.TemplateID, &custom, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &t.CustomData); err != nil {
			return Task{}, err
		}
	}
	return t, nil
}

var _ Repository = (*PGRepository)(nil)
