package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akravets/contacts-api/internal/domain"
)

const errUnauthorized = "Could not validate credentials"

// userKey is the gin context key the authenticated user is stored under.
const userKey = "currentUser"

// Authenticator resolves a bearer access token to a user record.
type Authenticator interface {
	CurrentUser(ctx context.Context, bearer string) (*domain.User, error)
}

// Auth validates the Authorization bearer token and stores the resolved
// user in the gin context for handlers to pick up via CurrentUser.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		bearer := strings.TrimPrefix(header, "Bearer ")
		user, err := auth.CurrentUser(c.Request.Context(), bearer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth. The bool is false on routes
// that did not pass through the middleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
