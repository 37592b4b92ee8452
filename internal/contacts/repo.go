package contacts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voli-hq/voli/internal/shared"
)

// Repository defines persistence operations for contacts.
type Repository interface {
	Create(ctx context.Context, contact Contact) (Contact, error)
	GetByID(ctx context.Context, id int64) (Contact, error)
	GetByUserID(ctx context.Context, userID int64) (Contact, error)
	List(ctx context.Context) ([]Contact, error)
	Update(ctx context.Context, contact Contact) (Contact, error)
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

const contactColumns = `id, first_name, middle_name, last_name, preferred_name, email, personal_email,
	phone_number, secondary_phone_number, date_of_birth, gender, postal_address, membership_id,
	organizational_unit, region, usi_number, preferred_contact_method, blue_card_number,
	license_number, notes, user_id`

// Create inserts a contact. Duplicate primary or personal email maps to
// shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, c Contact) (Contact, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO contacts (first_name, middle_name, last_name, preferred_name, email, personal_email,
			phone_number, secondary_phone_number, date_of_birth, gender, postal_address, membership_id,
			organizational_unit, region, usi_number, preferred_contact_method, blue_card_number,
			license_number, notes, user_id)
		 VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		 RETURNING `+contactColumns,
		c.FirstName, c.MiddleName, c.LastName, c.PreferredName, c.Email, c.PersonalEmail,
		c.PhoneNumber, c.SecondaryPhoneNumber, c.DateOfBirth, c.Gender, c.PostalAddress, c.MembershipID,
		c.OrganizationalUnit, c.Region, c.USINumber, c.PreferredContactMethod, c.BlueCardNumber,
		c.LicenseNumber, c.Notes, c.UserID,
	)
	return scanContact(row)
}

// GetByID fetches a contact by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	return scanContact(row)
}

// GetByUserID fetches the contact linked to a user account.
func (r *PGRepository) GetByUserID(ctx context.Context, userID int64) (Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE user_id = $1`, userID)
	return scanContact(row)
}

// List returns all contacts ordered by last then first name.
func (r *PGRepository) List(ctx context.Context) ([]Contact, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// Update rewrites a contact record.
func (r *PGRepository) Update(ctx context.Context, c Contact) (Contact, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contacts SET first_name=$2, middle_name=$3, last_name=$4, preferred_name=$5, email=$6,
			personal_email=NULLIF($7,''), phone_number=$8, secondary_phone_number=$9, date_of_birth=$10,
			gender=$11, postal_address=$12, membership_id=$13, organizational_unit=$14, region=$15,
			usi_number=$16, preferred_contact_method=$17, blue_card_number=$18, license_number=$19, notes=$20
		 WHERE id = $1
		 RETURNING `+contactColumns,
		c.ID, c.FirstName, c.MiddleName, c.LastName, c.PreferredName, c.Email, c.PersonalEmail,
		c.PhoneNumber, c.SecondaryPhoneNumber, c.DateOfBirth, c.Gender, c.PostalAddress, c.MembershipID,
		c.OrganizationalUnit, c.Region, c.USINumber, c.PreferredContactMethod, c.BlueCardNumber,
		c.LicenseNumber, c.Notes,
	)
	return scanContact(row)
}

// Delete removes a contact by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		c             Contact
		personalEmail *string
	)
	err := row.Scan(
		&c.ID, &c.FirstName, &c.MiddleName, &c.LastName, &c.PreferredName, &c.Email, &personalEmail,
		&c.PhoneNumber, &c.SecondaryPhoneNumber, &c.DateOfBirth, &c.Gender, &c.PostalAddress, &c.MembershipID,
		&c.OrganizationalUnit, &c.Region, &c.USINumber, &c.PreferredContactMethod, &c.BlueCardNumber,
		&c.LicenseNumber, &c.Notes, &c.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Contact{}, shared.ErrConflict
		}
		return Contact{}, err
	}
	if personalEmail != nil {
		c.PersonalEmail = *personalEmail
	}
	return c, nil
}

var _ Repository = (*PGRepository)(nil)
