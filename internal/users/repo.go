package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voli-hq/voli/internal/contacts"
	"github.com/voli-hq/voli/internal/platform/db"
	"github.com/voli-hq/voli/internal/shared"
)

// Repository defines persistence operations for user management.
type Repository interface {
	Register(ctx context.Context, email, passwordHash string, contact contacts.Contact) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	DeleteUsers(ctx context.Context, ids []int64) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Register creates the user account and its contact profile in one
// transaction. A duplicate email maps to shared.ErrConflict.
func (r *PGRepository) Register(ctx context.Context, email, passwordHash string, contact contacts.Contact) (*User, error) {
	var user User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, is_active) VALUES ($1, $2, TRUE)
			 RETURNING id, email, is_active, created_at, updated_at`,
			email, passwordHash,
		).Scan(&user.ID, &user.Email, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO contacts (first_name, middle_name, last_name, preferred_name, email, personal_email,
				phone_number, secondary_phone_number, date_of_birth, gender, postal_address, membership_id,
				organizational_unit, region, usi_number, preferred_contact_method, blue_card_number,
				license_number, notes, user_id)
			 VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
			contact.FirstName, contact.MiddleName, contact.LastName, contact.PreferredName, contact.Email,
			contact.PersonalEmail, contact.PhoneNumber, contact.SecondaryPhoneNumber, contact.DateOfBirth,
			contact.Gender, contact.PostalAddress, contact.MembershipID, contact.OrganizationalUnit,
			contact.Region, contact.USINumber, contact.PreferredContactMethod, contact.BlueCardNumber,
			contact.LicenseNumber, contact.Notes, user.ID,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users with their current role sets.
func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.email, u.is_active, u.created_at, u.updated_at, r.id, r.name
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 ORDER BY u.id, r.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		users []User
		byID  = map[int64]int{}
	)
	for rows.Next() {
		var (
			user     User
			roleID   *int64
			roleName *string
		)
		if err := rows.Scan(&user.ID, &user.Email, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &roleID, &roleName); err != nil {
			return nil, err
		}
		idx, seen := byID[user.ID]
		if !seen {
			users = append(users, user)
			idx = len(users) - 1
			byID[user.ID] = idx
		}
		if roleID != nil && roleName != nil {
			users[idx].Roles = append(users[idx].Roles, RoleRef{ID: *roleID, Name: *roleName})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user with roles.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, is_active, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name FROM roles r JOIN user_roles ur ON ur.role_id = r.id WHERE ur.user_id = $1 ORDER BY r.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref RoleRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		user.Roles = append(user.Roles, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUsers removes accounts by id and reports how many went away. Role
// assignments and contact links go with them.
func (r *PGRepository) DeleteUsers(ctx context.Context, ids []int64) (int64, error) {
	var deleted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = ANY($1)`, ids); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE contacts SET user_id = NULL WHERE user_id = ANY($1)`, ids); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

var _ Repository = (*PGRepository)(nil)
