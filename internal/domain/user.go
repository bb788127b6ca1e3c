package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("account already exists")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrTokenInvalid      = errors.New("token is invalid or expired")
	ErrUnauthorized      = errors.New("could not validate credentials")
)

// User is the account record. RefreshToken holds at most one live value:
// it is replaced on every login/refresh and cleared when a presented
// refresh token does not match the stored one.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Confirmed    bool
	Avatar       string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
