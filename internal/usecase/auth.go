package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/akravets/contacts-api/internal/domain"
	"github.com/akravets/contacts-api/internal/email"
	"github.com/akravets/contacts-api/internal/metrics"
	"github.com/akravets/contacts-api/internal/password"
	"github.com/akravets/contacts-api/internal/repository"
	"github.com/akravets/contacts-api/internal/token"
)

// UserCache is the read-through cache in front of the user store. Mutating
// flows invalidate the entry for the affected email before returning.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, bool)
	Set(ctx context.Context, user *domain.User)
	Invalidate(ctx context.Context, email string)
}

type AuthUsecase struct {
	users   repository.UserStore
	cache   UserCache
	codec   *token.Codec
	email   email.Sender
	logger  *slog.Logger
	baseURL string
}

func NewAuthUsecase(users repository.UserStore, cache UserCache, codec *token.Codec, emailSender email.Sender, baseURL string, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:   users,
		cache:   cache,
		codec:   codec,
		email:   emailSender,
		logger:  logger.With("component", "auth_usecase"),
		baseURL: baseURL,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type SignupInput struct {
	Email    string
	Username string
	Password string
}

// findUser resolves email through the cache, falling back to the store and
// populating the cache on a miss. Returns (nil, nil) when no account exists.
func (u *AuthUsecase) findUser(ctx context.Context, emailAddr string) (*domain.User, error) {
	if user, ok := u.cache.Get(ctx, emailAddr); ok {
		return user, nil
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	u.cache.Set(ctx, user)
	return user, nil
}

// Signup registers a new unconfirmed account and emails a confirmation
// link. The email send is fire-and-forget: its failure never fails signup.
func (u *AuthUsecase) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	existing, err := u.findUser(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := u.users.Create(ctx, &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.cache.Invalidate(ctx, created.Email)

	u.sendConfirmation(ctx, created)
	return created, nil
}

// Login verifies credentials and issues an access/refresh pair. The stored
// refresh token is replaced, so any previous session loses its refresh.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plainPassword string) (*TokenPair, error) {
	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidEmail
	}
	if !user.Confirmed {
		return nil, domain.ErrEmailNotConfirmed
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, domain.ErrInvalidPassword
	}

	pair, err := u.issuePair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := u.users.UpdateRefreshToken(ctx, user.Email, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	u.cache.Invalidate(ctx, user.Email)

	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. A presented
// token that no longer matches the stored one is a reuse signal: the stored
// token is cleared, forcing a new login.
func (u *AuthUsecase) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	emailAddr, err := u.codec.Parse(raw, token.ScopeRefresh)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrTokenInvalid
	}

	if user.RefreshToken == nil || *user.RefreshToken != raw {
		if err := u.users.UpdateRefreshToken(ctx, emailAddr, nil); err != nil {
			return nil, fmt.Errorf("clear refresh token: %w", err)
		}
		u.cache.Invalidate(ctx, emailAddr)
		return nil, domain.ErrTokenInvalid
	}

	pair, err := u.issuePair(emailAddr)
	if err != nil {
		return nil, err
	}
	// Compare-and-set: if another rotation got there first, this one fails
	// closed instead of silently forking the session.
	if err := u.users.RotateRefreshToken(ctx, emailAddr, raw, pair.RefreshToken); err != nil {
		u.cache.Invalidate(ctx, emailAddr)
		return nil, domain.ErrTokenInvalid
	}
	u.cache.Invalidate(ctx, emailAddr)

	return pair, nil
}

// ConfirmEmail flips the confirmed flag from an email-verify token.
// Idempotent: confirming an already confirmed account is a no-op and
// reports alreadyConfirmed.
func (u *AuthUsecase) ConfirmEmail(ctx context.Context, raw string) (alreadyConfirmed bool, err error) {
	emailAddr, err := u.codec.Parse(raw, token.ScopeEmailVerify)
	if err != nil {
		return false, domain.ErrTokenInvalid
	}

	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, domain.ErrUserNotFound
	}
	if user.Confirmed {
		return true, nil
	}

	if err := u.users.SetConfirmed(ctx, emailAddr); err != nil {
		return false, fmt.Errorf("confirm email: %w", err)
	}
	u.cache.Invalidate(ctx, emailAddr)
	return false, nil
}

// RequestEmailConfirmation re-sends the confirmation link. It never reveals
// whether the account exists.
func (u *AuthUsecase) RequestEmailConfirmation(ctx context.Context, emailAddr string) (alreadyConfirmed bool, err error) {
	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if user.Confirmed {
		return true, nil
	}

	u.sendConfirmation(ctx, user)
	return false, nil
}

// RequestPasswordReset emails a reset link when the account exists. Always
// succeeds from the caller's view.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user != nil {
		u.sendPasswordReset(ctx, user)
	}
	return nil
}

// ConfirmPasswordReset validates a reset token and returns the account
// email the new password may be set for.
func (u *AuthUsecase) ConfirmPasswordReset(ctx context.Context, raw string) (string, error) {
	emailAddr, err := u.codec.Parse(raw, token.ScopeEmailVerify)
	if err != nil {
		return "", domain.ErrTokenInvalid
	}

	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	return emailAddr, nil
}

// SetNewPassword re-hashes and stores a new password for the account.
func (u *AuthUsecase) SetNewPassword(ctx context.Context, emailAddr, newPassword string) error {
	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, emailAddr, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	u.cache.Invalidate(ctx, emailAddr)
	return nil
}

// CurrentUser resolves a bearer access token to its account. Guards every
// protected route.
func (u *AuthUsecase) CurrentUser(ctx context.Context, bearer string) (*domain.User, error) {
	emailAddr, err := u.codec.Parse(bearer, token.ScopeAccess)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := u.findUser(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (u *AuthUsecase) issuePair(emailAddr string) (*TokenPair, error) {
	access, err := u.codec.Issue(emailAddr, token.ScopeAccess, 0)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := u.codec.Issue(emailAddr, token.ScopeRefresh, 0)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (u *AuthUsecase) sendConfirmation(ctx context.Context, user *domain.User) {
	verify, err := u.codec.Issue(user.Email, token.ScopeEmailVerify, 0)
	if err != nil {
		u.logger.ErrorContext(ctx, "issue email-verify token", "error", err)
		return
	}

	link := u.baseURL + "/api/auth/confirmed_email/" + verify
	subject := "Confirm your email"
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to confirm your email:</p><p><a href="%s">%s</a></p>`,
		user.Username, link, link,
	)
	u.dispatch(ctx, "confirmation", user.Email, subject, body)
}

func (u *AuthUsecase) sendPasswordReset(ctx context.Context, user *domain.User) {
	verify, err := u.codec.Issue(user.Email, token.ScopeEmailVerify, 0)
	if err != nil {
		u.logger.ErrorContext(ctx, "issue reset token", "error", err)
		return
	}

	link := u.baseURL + "/api/auth/confirm_password_reset/" + verify
	subject := "Reset your password"
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to reset your password:</p><p><a href="%s">%s</a></p>`,
		user.Username, link, link,
	)
	u.dispatch(ctx, "password_reset", user.Email, subject, body)
}

// dispatch is fire-and-forget: send errors are logged and counted, never
// surfaced to the triggering request.
func (u *AuthUsecase) dispatch(ctx context.Context, kind, to, subject, body string) {
	if err := u.email.Send(ctx, to, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send email", "kind", kind, "to", to, "error", err)
		metrics.EmailsSentTotal.WithLabelValues(kind, "error").Inc()
		return
	}
	metrics.EmailsSentTotal.WithLabelValues(kind, "ok").Inc()
}
