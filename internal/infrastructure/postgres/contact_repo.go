package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at`

// birthdayWindow matches rows whose next birthday falls within the next
// N days (the placeholder arg), checking both the current and the following
// calendar year so the window survives year wrap.
func birthdayWindow(col, arg string) string {
	return fmt.Sprintf(`(
		make_date(EXTRACT(YEAR FROM CURRENT_DATE)::int,
		          EXTRACT(MONTH FROM %[1]s)::int,
		          EXTRACT(DAY FROM %[1]s)::int)
			BETWEEN CURRENT_DATE AND CURRENT_DATE + %[2]s::int
		OR
		make_date(EXTRACT(YEAR FROM CURRENT_DATE)::int + 1,
		          EXTRACT(MONTH FROM %[1]s)::int,
		          EXTRACT(DAY FROM %[1]s)::int)
			BETWEEN CURRENT_DATE AND CURRENT_DATE + %[2]s::int
	)`, col, arg)
}

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + contactColumns

	row := r.pool.QueryRow(ctx, query,
		contact.UserID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.DateOfBirth,
	)
	return scanContact(row)
}

func (r *ContactRepository) GetByID(ctx context.Context, id, userID string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContact(r.pool.QueryRow(ctx, query, id, userID))
}

// List applies at most one filter, in the reference order of precedence:
// first name prefix, last name prefix, email prefix, birthday window.
// With no filter it pages by offset/limit.
func (r *ContactRepository) List(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
	var (
		query string
		args  []any
	)

	switch {
	case input.FirstName != "":
		query = `SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = $1 AND first_name LIKE $2 || '%'
			ORDER BY last_name, first_name`
		args = []any{input.UserID, input.FirstName}
	case input.LastName != "":
		query = `SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = $1 AND last_name LIKE $2 || '%'
			ORDER BY last_name, first_name`
		args = []any{input.UserID, input.LastName}
	case input.Email != "":
		query = `SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = $1 AND email LIKE $2 || '%'
			ORDER BY last_name, first_name`
		args = []any{input.UserID, input.Email}
	case input.BirthdaysWithin > 0:
		query = `SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = $1 AND ` + birthdayWindow("date_of_birth", "$2") + `
			ORDER BY EXTRACT(MONTH FROM date_of_birth), EXTRACT(DAY FROM date_of_birth)`
		args = []any{input.UserID, input.BirthdaysWithin}
	default:
		query = `SELECT ` + contactColumns + `
			FROM contacts
			WHERE user_id = $1
			ORDER BY last_name, first_name
			OFFSET $2 LIMIT $3`
		args = []any{input.UserID, input.Offset, input.Limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	query := `
		UPDATE contacts
		SET    first_name    = $3,
		       last_name     = $4,
		       email         = $5,
		       phone         = $6,
		       date_of_birth = $7,
		       updated_at    = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	row := r.pool.QueryRow(ctx, query,
		contact.ID, contact.UserID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.DateOfBirth,
	)
	return scanContact(row)
}

func (r *ContactRepository) UpdateDateOfBirth(ctx context.Context, id, userID string, dateOfBirth time.Time) (*domain.Contact, error) {
	query := `
		UPDATE contacts
		SET date_of_birth = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	return scanContact(r.pool.QueryRow(ctx, query, id, userID, dateOfBirth))
}

func (r *ContactRepository) Delete(ctx context.Context, id, userID string) (*domain.Contact, error) {
	query := `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns

	return scanContact(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, withinDays int) ([]*domain.UpcomingBirthday, error) {
	query := `
		SELECT u.email, u.username, c.first_name, c.last_name, c.date_of_birth
		FROM contacts c
		JOIN users u ON u.id = c.user_id
		WHERE ` + birthdayWindow("c.date_of_birth", "$1") + `
		ORDER BY u.email, EXTRACT(MONTH FROM c.date_of_birth), EXTRACT(DAY FROM c.date_of_birth)`

	rows, err := r.pool.Query(ctx, query, withinDays)
	if err != nil {
		return nil, fmt.Errorf("upcoming birthdays: %w", err)
	}
	defer rows.Close()

	var out []*domain.UpcomingBirthday
	for rows.Next() {
		var b domain.UpcomingBirthday
		if err := rows.Scan(&b.OwnerEmail, &b.OwnerUsername, &b.FirstName, &b.LastName, &b.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan upcoming birthday: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	return &c, nil
}
