package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/repository"
	"github.com/akravets/contacts-api/internal/transport/http/middleware"
	"github.com/akravets/contacts-api/internal/usecase"
)

type contactUsecaser interface {
	Create(ctx context.Context, input usecase.ContactInput) (*domain.Contact, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Contact, error)
	List(ctx context.Context, input repository.ListContactsInput) ([]*domain.Contact, error)
	Update(ctx context.Context, id string, input usecase.ContactInput) (*domain.Contact, error)
	UpdateDateOfBirth(ctx context.Context, id, userID string, dateOfBirth time.Time) (*domain.Contact, error)
	Delete(ctx context.Context, id, userID string) (*domain.Contact, error)
}

type ContactHandler struct {
	contacts contactUsecaser
	logger   *slog.Logger
}

func NewContactHandler(contacts contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		logger:   logger.With("component", "contact_handler"),
	}
}

const dateLayout = "2006-01-02"

type contactRequest struct {
	FirstName   string  `json:"first_name" binding:"required,min=1,max=50"`
	LastName    string  `json:"last_name" binding:"required,min=1,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=20"`
	DateOfBirth string  `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
}

func (r contactRequest) toInput(userID string) (usecase.ContactInput, error) {
	dob, err := time.Parse(dateLayout, r.DateOfBirth)
	if err != nil {
		return usecase.ContactInput{}, err
	}
	if dob.After(time.Now()) {
		return usecase.ContactInput{}, errors.New("date_of_birth must be in the past")
	}
	return usecase.ContactInput{
		UserID:      userID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		DateOfBirth: dob,
	}, nil
}

type contactResponse struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth string  `json:"date_of_birth"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func newContactResponse(c *domain.Contact) contactResponse {
	return contactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: c.DateOfBirth.Format(dateLayout),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

// POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput(user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.contacts.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("create contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, newContactResponse(created))
}

// GET /api/contacts
// Supports offset/limit paging and one filter at a time: first_name,
// last_name, email prefix match, or birthdays_within days.
func (h *ContactHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	input := repository.ListContactsInput{
		UserID:    user.ID,
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}
	input.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	input.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	if days := c.Query("birthdays_within"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birthdays_within must be a positive integer"})
			return
		}
		input.BirthdaysWithin = n
	}

	contacts, err := h.contacts.List(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("list contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, newContactResponse(contact))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondContactError(c, "get contact", err)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(contact))
}

// PUT /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input, err := req.toInput(user.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.contacts.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondContactError(c, "update contact", err)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(updated))
}

type dateOfBirthRequest struct {
	DateOfBirth string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
}

// PATCH /api/contacts/:id
func (h *ContactHandler) UpdateDateOfBirth(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	var req dateOfBirthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil || dob.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_of_birth must be a past date"})
		return
	}

	updated, err := h.contacts.UpdateDateOfBirth(c.Request.Context(), c.Param("id"), user.ID, dob)
	if err != nil {
		h.respondContactError(c, "update date of birth", err)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(updated))
}

// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	removed, err := h.contacts.Delete(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.respondContactError(c, "delete contact", err)
		return
	}
	c.JSON(http.StatusOK, newContactResponse(removed))
}

func (h *ContactHandler) respondContactError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrContactNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errContactNotFound})
		return
	}
	h.logger.Error(op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
