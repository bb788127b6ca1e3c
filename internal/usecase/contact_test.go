package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
	"github.com/akravets/contacts-api/internal/usecase"
)

// fakeContactRepo uses function fields so each test injects only what it
// needs.
type fakeContactRepo struct {
	create            func(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	getByID           func(ctx context.Context, id, userID string) (*domain.Contact, error)
	list              func(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error)
	update            func(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	updateDateOfBirth func(ctx context.Context, id, userID string, dob time.Time) (*domain.Contact, error)
	del               func(ctx context.Context, id, userID string) (*domain.Contact, error)
	upcoming          func(ctx context.Context, withinDays int) ([]*domain.UpcomingBirthday, error)
}

func (r *fakeContactRepo) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	return r.create(ctx, c)
}

func (r *fakeContactRepo) GetByID(ctx context.Context, id, userID string) (*domain.Contact, error) {
	return r.getByID(ctx, id, userID)
}

func (r *fakeContactRepo) List(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
	return r.list(ctx, input)
}

func (r *fakeContactRepo) Update(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	return r.update(ctx, c)
}

func (r *fakeContactRepo) UpdateDateOfBirth(ctx context.Context, id, userID string, dob time.Time) (*domain.Contact, error) {
	return r.updateDateOfBirth(ctx, id, userID, dob)
}

func (r *fakeContactRepo) Delete(ctx context.Context, id, userID string) (*domain.Contact, error) {
	return r.del(ctx, id, userID)
}

func (r *fakeContactRepo) UpcomingBirthdays(ctx context.Context, withinDays int) ([]*domain.UpcomingBirthday, error) {
	return r.upcoming(ctx, withinDays)
}

func TestListContacts_LimitDefaultsAndClamps(t *testing.T) {
	var captured repository.ListContactsInput
	repo := &fakeContactRepo{
		list: func(_ context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
			captured = input
			return nil, nil
		},
	}
	u := usecase.NewContactUsecase(repo)

	if _, err := u.List(context.Background(), repository.ListContactsInput{UserID: "user-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Limit != 20 {
		t.Errorf("default limit = %d, want 20", captured.Limit)
	}

	if _, err := u.List(context.Background(), repository.ListContactsInput{UserID: "user-1", Limit: 10_000, Offset: -5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Limit != 100 {
		t.Errorf("clamped limit = %d, want 100", captured.Limit)
	}
	if captured.Offset != 0 {
		t.Errorf("negative offset not reset, got %d", captured.Offset)
	}
}

func TestGetContact_NotFoundPropagates(t *testing.T) {
	repo := &fakeContactRepo{
		getByID: func(_ context.Context, _, _ string) (*domain.Contact, error) {
			return nil, domain.ErrContactNotFound
		},
	}
	u := usecase.NewContactUsecase(repo)

	_, err := u.GetByID(context.Background(), "c-1", "user-1")
	if !errors.Is(err, domain.ErrContactNotFound) {
		t.Errorf("want ErrContactNotFound, got %v", err)
	}
}

func TestCreateContact_PassesOwnership(t *testing.T) {
	repo := &fakeContactRepo{
		create: func(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
			created := *c
			created.ID = "c-1"
			return &created, nil
		},
	}
	u := usecase.NewContactUsecase(repo)

	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	contact, err := u.Create(context.Background(), usecase.ContactInput{
		UserID: "user-1", FirstName: "Bob", LastName: "Stone", DateOfBirth: dob,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.UserID != "user-1" {
		t.Errorf("contact owner = %q, want user-1", contact.UserID)
	}
	if !contact.DateOfBirth.Equal(dob) {
		t.Errorf("date of birth = %v, want %v", contact.DateOfBirth, dob)
	}
}
