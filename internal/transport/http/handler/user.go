package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/transport/http/middleware"
)

type userUsecaser interface {
	AvatarUploadURL(ctx context.Context, userID string) (key, uploadURL string, err error)
	SetAvatar(ctx context.Context, email, key string) (*domain.User, error)
}

type UserHandler struct {
	users  userUsecaser
	logger *slog.Logger
}

func NewUserHandler(users userUsecaser, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With("component", "user_handler"),
	}
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// POST /api/users/avatar
// Returns a presigned PUT URL; the client uploads directly to object
// storage and then confirms with PATCH.
func (h *UserHandler) AvatarUploadURL(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	key, uploadURL, err := h.users.AvatarUploadURL(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("presign avatar upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"key":        key,
		"upload_url": uploadURL,
	})
}

type setAvatarRequest struct {
	Key string `json:"key" binding:"required"`
}

// PATCH /api/users/avatar
func (h *UserHandler) SetAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	var req setAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.users.SetAvatar(c.Request.Context(), user.Email, req.Key)
	if err != nil {
		h.logger.Error("set avatar", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(updated))
}
