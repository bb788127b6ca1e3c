package domain

import (
	"errors"
	"time"
)

var ErrContactNotFound = errors.New("contact not found")

type Contact struct {
	ID          string
	UserID      string
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpcomingBirthday is a reminder row: a contact whose birthday falls within
// the requested window, joined with its owner.
type UpcomingBirthday struct {
	OwnerEmail    string
	OwnerUsername string
	FirstName     string
	LastName      string
	DateOfBirth   time.Time
}
