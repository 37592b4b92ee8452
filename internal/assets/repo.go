package assets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voli-hq/voli/internal/shared"
)

// Repository defines persistence operations for assets.
type Repository interface {
	Create(ctx context.Context, asset Asset) (Asset, error)
	GetByID(ctx context.Context, id int64) (Asset, error)
	List(ctx context.Context, limit, offset int) ([]Asset, error)
	Update(ctx context.Context, asset Asset) (Asset, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const assetColumns = `id, name, description, status, serial_number, purchase_date, assignee_id, created_at, updated_at`

// Create inserts an asset. A duplicate serial number maps to
// shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, a Asset) (Asset, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO assets (name, description, status, serial_number, purchase_date, assignee_id)
		 VALUES ($1, $2, $3, NULLIF($4,''), $5, $6)
		 RETURNING `+assetColumns,
		a.Name, a.Description, a.Status, a.SerialNumber, a.PurchaseDate, a.AssigneeID,
	)
	return scanAsset(row)
}

// GetByID fetches an asset by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (Asset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	return scanAsset(row)
}

// List returns assets ordered by name.
func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// Update rewrites an asset record.
func (r *PGRepository) Update(ctx context.Context, a Asset) (Asset, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE assets SET name=$2, description=$3, status=$4, serial_number=NULLIF($5,''),
			purchase_date=$6, assignee_id=$7, updated_at=now()
		 WHERE id = $1
		 RETURNING `+assetColumns,
		a.ID, a.Name, a.Description, a.Status, a.SerialNumber, a.PurchaseDate, a.AssigneeID,
	)
	return scanAsset(row)
}

// Delete removes an asset by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (Asset, error) {
	var (
		a      Asset
		serial *string
	)
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Status, &serial,
		&a.PurchaseDate, &a.AssigneeID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Asset{}, shared.ErrConflict
		}
		return Asset{}, err
	}
	if serial != nil {
		a.SerialNumber = *serial
	}
	return a, nil
}

var _ Repository = (*PGRepository)(nil)
