package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akravets/contacts-api/internal/domain"
)

const userColumns = `id, username, email, password_hash, confirmed, avatar, refresh_token, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Avatar)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE email = $1`,
		email, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken is a compare-and-set: a concurrent rotation that
// already replaced the stored token makes this one lose cleanly.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, email, current, next string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $3, updated_at = NOW()
		WHERE email = $1 AND refresh_token = $2`,
		email, current, next)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (r *UserRepository) SetConfirmed(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE email = $1`,
		email)
	if err != nil {
		return fmt.Errorf("set confirmed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE email = $1`,
		email, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, email, avatarURL string) (*domain.User, error) {
	query := `
		UPDATE users SET avatar = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, email, avatarURL))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Confirmed,
		&u.Avatar, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
