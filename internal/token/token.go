// Package token issues and verifies the signed, scoped JWTs used for API
// access, refresh rotation and email verification links.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope restricts what a token may be used for. A token presented with the
// wrong scope is rejected regardless of signature validity.
type Scope string

const (
	ScopeAccess      Scope = "access"
	ScopeRefresh     Scope = "refresh"
	ScopeEmailVerify Scope = "email_verify"
)

const (
	DefaultAccessTTL      = 15 * time.Minute
	DefaultRefreshTTL     = 7 * 24 * time.Hour
	DefaultEmailVerifyTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalid = errors.New("token is invalid")
	ErrExpired = errors.New("token has expired")
)

type claims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

// Codec signs and verifies HS256 tokens with a single process-wide secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// defaultTTL returns the lifetime used when the caller passes ttl == 0.
func defaultTTL(scope Scope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return DefaultRefreshTTL
	case ScopeEmailVerify:
		return DefaultEmailVerifyTTL
	default:
		return DefaultAccessTTL
	}
}

// Issue signs a token for subject with the given scope. ttl == 0 selects
// the default lifetime for the scope.
func (c *Codec) Issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = defaultTTL(scope)
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	})
	return t.SignedString(c.secret)
}

// Parse verifies raw and returns its subject. It fails with ErrExpired past
// the token's expiry and ErrInvalid on a bad signature, a non-HMAC signing
// method, a missing subject, or a scope other than want.
func (c *Codec) Parse(raw string, want Scope) (string, error) {
	var cl claims
	t, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if !t.Valid || cl.Subject == "" || cl.Scope != want {
		return "", ErrInvalid
	}
	return cl.Subject, nil
}
