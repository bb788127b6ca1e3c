package repository

import (
	"context"
	"time"

	"github.com/akravets/contacts-api/internal/domain"
)

type ListContactsInput struct {
	UserID string
	Offset int
	Limit  int

	// Prefix filters, applied one at a time in this order of precedence.
	FirstName string
	LastName  string
	Email     string

	// BirthdaysWithin selects contacts whose birthday falls in the next N
	// days when > 0.
	BirthdaysWithin int
}

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)

	// GetByID returns domain.ErrContactNotFound when the contact does not
	// exist or belongs to another user.
	GetByID(ctx context.Context, id, userID string) (*domain.Contact, error)

	List(ctx context.Context, input ListContactsInput) ([]*domain.Contact, error)

	Update(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)

	UpdateDateOfBirth(ctx context.Context, id, userID string, dateOfBirth time.Time) (*domain.Contact, error)

	Delete(ctx context.Context, id, userID string) (*domain.Contact, error)

	// UpcomingBirthdays returns every contact, across all users, whose
	// birthday falls within the next withinDays days, joined with its owner.
	UpcomingBirthdays(ctx context.Context, withinDays int) ([]*domain.UpcomingBirthday, error)
}
