package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, input usecase.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, raw string) (*usecase.TokenPair, error)
	ConfirmEmail(ctx context.Context, raw string) (bool, error)
	RequestEmailConfirmation(ctx context.Context, email string) (bool, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, raw string) (string, error)
	SetNewPassword(ctx context.Context, email, newPassword string) error
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(pair *usecase.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errAccountExists})
			return
		}
		h.logger.Error("signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   newUserResponse(user),
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
// Failure causes get distinct messages but the same 401 status.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidEmail})
		case errors.Is(err, domain.ErrEmailNotConfirmed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errEmailNotConfirmed})
		case errors.Is(err, domain.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidPassword})
		default:
			h.logger.Error("login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, newTokenResponse(pair))
}

// GET /api/auth/refresh_token
// The bearer token here is the refresh token, not the access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
			return
		}
		h.logger.Error("refresh token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// GET /api/auth/confirmed_email/:token
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	already, err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.Error("confirm email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/auth/request_email
// Always answers the same way for unknown accounts.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	already, err := h.auth.RequestEmailConfirmation(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("request email confirmation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	if already {
		c.JSON(http.StatusCreated, gin.H{"message": "Your email is already confirmed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Check your email for confirmation."})
}

// POST /api/auth/password_reset
// Never reveals whether the account exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("request password reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Check your email for password reset instructions."})
}

// GET /api/auth/confirm_password_reset/:token
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	if _, err := h.auth.ConfirmPasswordReset(c.Request.Context(), c.Param("token")); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.Error("confirm password reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset confirmed. You may now set a new password."})
}

type newPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// POST /api/auth/new_password
// The token is the one delivered by the password reset email.
func (h *AuthHandler) NewPassword(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emailAddr, err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token)
	if err == nil {
		err = h.auth.SetNewPassword(c.Request.Context(), emailAddr, req.NewPassword)
	}
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.Error("set new password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Password updated"})
}
