package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"

	"github.com/akravets/contacts-api/internal/transport/http/handler"
	"github.com/akravets/contacts-api/internal/transport/http/middleware"
)

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	Logger  *slog.Logger
	Auth    *handler.AuthHandler
	Contact *handler.ContactHandler
	User    *handler.UserHandler

	Authenticator middleware.Authenticator
	Counter       middleware.Counter

	CORSOrigin      string
	ReadLimit       int64
	WriteLimit      int64
	RateLimitWindow time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(deps.CORSOrigin))
	r.Use(sloggin.New(deps.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(deps.Authenticator)
	readLimit := middleware.RateLimit(deps.Counter, deps.Logger, deps.ReadLimit, deps.RateLimitWindow)
	writeLimit := middleware.RateLimit(deps.Counter, deps.Logger, deps.WriteLimit, deps.RateLimitWindow)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Contacts API"})
	})
	r.GET("/api/healthchecker", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Contacts API"})
	})

	auth := r.Group("/api/auth")
	auth.POST("/signup", deps.Auth.Signup)
	auth.POST("/login", deps.Auth.Login)
	auth.GET("/refresh_token", deps.Auth.Refresh)
	auth.GET("/confirmed_email/:token", deps.Auth.ConfirmEmail)
	auth.POST("/request_email", deps.Auth.RequestEmail)
	auth.POST("/password_reset", deps.Auth.RequestPasswordReset)
	auth.GET("/confirm_password_reset/:token", deps.Auth.ConfirmPasswordReset)
	auth.POST("/new_password", deps.Auth.NewPassword)

	contacts := r.Group("/api/contacts", authMW)
	contacts.GET("", readLimit, deps.Contact.List)
	contacts.POST("", writeLimit, deps.Contact.Create)
	contacts.GET("/:id", readLimit, deps.Contact.Get)
	contacts.PUT("/:id", readLimit, deps.Contact.Update)
	contacts.PATCH("/:id", readLimit, deps.Contact.UpdateDateOfBirth)
	contacts.DELETE("/:id", readLimit, deps.Contact.Delete)

	users := r.Group("/api/users", authMW)
	users.GET("/me", readLimit, deps.User.Me)
	users.POST("/avatar", writeLimit, deps.User.AvatarUploadURL)
	users.PATCH("/avatar", writeLimit, deps.User.SetAvatar)

	return r
}
