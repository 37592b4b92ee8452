package templates

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voli-hq/voli/internal/shared"
)

// Repository defines persistence operations for task templates.
type Repository interface {
	Create(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error)
	Get(ctx context.Context, id int64) (TaskTemplate, error)
	List(ctx context.Context) ([]TaskTemplate, error)
	Update(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL. The fields schema is
// stored as JSONB.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a template. A duplicate name maps to shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	schema, err := json.Marshal(tpl.FieldsSchema)
	if err != nil {
		return TaskTemplate{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO task_templates (name, description, fields_schema) VALUES ($1, $2, $3)
		 RETURNING id, name, description, fields_schema`,
		tpl.Name, tpl.Description, schema,
	)
	return scanTemplate(row)
}

// Get fetches a template by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (TaskTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, fields_schema FROM task_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

// List returns all templates ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]TaskTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, fields_schema FROM task_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TaskTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a template.
func (r *PGRepository) Update(ctx context.Context, tpl TaskTemplate) (TaskTemplate, error) {
	schema, err := json.Marshal(tpl.FieldsSchema)
	if err != nil {
		return TaskTemplate{}, err
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE task_templates SET name = $2, description = $3, fields_schema = $4 WHERE id = $1
		 RETURNING id, name, description, fields_schema`,
		tpl.ID, tpl.Name, tpl.Description, schema,
	)
	return scanTemplate(row)
}

// Delete removes a template by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM task_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (TaskTemplate, error) {
	var (
		tpl TaskTemplate
		raw []byte
	)
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TaskTemplate{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return TaskTemplate{}, shared.ErrConflict
		}
		return TaskTemplate{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tpl.FieldsSchema); err != nil {
			return TaskTemplate{}, err
		}
	}
	return tpl, nil
}

var _ Repository = (*PGRepository)(nil)
