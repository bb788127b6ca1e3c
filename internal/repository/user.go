package repository

import (
	"context"

	"github.com/akravets/contacts-api/internal/domain"
)

// UserStore is the persistence boundary for user records. Every method is
// atomic at the single-record level.
type UserStore interface {
	// Create inserts a new user and returns the stored record.
	// Fails with domain.ErrEmailTaken when the email already exists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateRefreshToken unconditionally replaces the stored refresh token.
	// A nil token clears it, forcing re-login.
	UpdateRefreshToken(ctx context.Context, email string, token *string) error

	// RotateRefreshToken replaces the stored refresh token only if it still
	// equals current. Fails with domain.ErrTokenInvalid when another
	// rotation won the race.
	RotateRefreshToken(ctx context.Context, email, current, next string) error

	// SetConfirmed flips the confirmed flag to true. The flag never reverts.
	SetConfirmed(ctx context.Context, email string) error

	UpdatePassword(ctx context.Context, email, passwordHash string) error

	UpdateAvatar(ctx context.Context, email, avatarURL string) (*domain.User, error)
}
