package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/chachabrian/tourhub-backend/internal/config"
	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) error
}

// SessionCookie describes the HttpOnly cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge int
}

func NewSessionCookie(cfg config.AuthConfig) SessionCookie {
	return SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure, MaxAge: int(cfg.SessionTTL.Seconds())}
}

func (sc SessionCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, sc.MaxAge, "/", "", sc.Secure, true)
}

func (sc SessionCookie) clear(c *gin.Context) {
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// Register creates a user account and opens a session
func Register(auth AuthService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		session, err := auth.Register(c.Request.Context(), input)
		if err != nil {
			if errors.Is(err, services.ErrDuplicate) {
				c.JSON(409, gin.H{"error": "Email already registered"})
				return
			}
			respondError(c, err, "User")
			return
		}

		cookie.set(c, session.Token)
		c.JSON(201, gin.H{
			"message": "Registration successful",
			"token":   session.Token,
			"user":    session.User,
		})
	}
}

// Login authenticates with email and password
func Login(auth AuthService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		session, err := auth.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respondError(c, err, "User")
			return
		}

		cookie.set(c, session.Token)
		c.JSON(200, gin.H{
			"token":     session.Token,
			"expiresAt": session.ExpiresAt,
			"user":      session.User,
		})
	}
}

// Logout revokes the current session and clears the cookie
func Logout(auth AuthService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), principal(c).SessionID); err != nil {
			respondError(c, err, "Session")
			return
		}
		cookie.clear(c)
		c.JSON(200, gin.H{"message": "Logged out"})
	}
}

// GetSession returns the signed-in user
func GetSession(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c.Request.Context(), principal(c).UserID)
		if err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"user": user})
	}
}

// RequestPasswordReset always answers 200 so account existence is not revealed
func RequestPasswordReset(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		if err := auth.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"message": "If an account exists for that email, a reset code has been sent"})
	}
}

// ResetPassword sets a new password using the emailed code
func ResetPassword(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ResetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		if err := auth.ResetPassword(c.Request.Context(), input); err != nil {
			respondError(c, err, "User")
			return
		}
		c.JSON(200, gin.H{"message": "Password reset successfully"})
	}
}
