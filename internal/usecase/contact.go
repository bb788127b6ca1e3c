package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type ContactUsecase struct {
	repo repository.ContactRepository
}

func NewContactUsecase(repo repository.ContactRepository) *ContactUsecase {
	return &ContactUsecase{repo: repo}
}

type ContactInput struct {
	UserID      string
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth time.Time
}

func (u *ContactUsecase) Create(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	created, err := u.repo.Create(ctx, &domain.Contact{
		UserID:      input.UserID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
	})
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

func (u *ContactUsecase) GetByID(ctx context.Context, id, userID string) (*domain.Contact, error) {
	contact, err := u.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func (u *ContactUsecase) List(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	contacts, err := u.repo.List(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (u *ContactUsecase) Update(ctx context.Context, id string, input ContactInput) (*domain.Contact, error) {
	updated, err := u.repo.Update(ctx, &domain.Contact{
		ID:          id,
		UserID:      input.UserID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
	})
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

func (u *ContactUsecase) UpdateDateOfBirth(ctx context.Context, id, userID string, dateOfBirth time.Time) (*domain.Contact, error) {
	updated, err := u.repo.UpdateDateOfBirth(ctx, id, userID, dateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("update date of birth: %w", err)
	}
	return updated, nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id, userID string) (*domain.Contact, error) {
	removed, err := u.repo.Delete(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("delete contact: %w", err)
	}
	return removed, nil
}
