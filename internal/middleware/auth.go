package middleware

import (
	"context"
	"strings"

	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const principalKey = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// tokenFrom reads the bearer header first, then the session cookie, then the
// token query parameter used by websocket clients.
func tokenFrom(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

func setPrincipal(c *gin.Context, p *services.Principal) {
	c.Set(principalKey, *p)
	c.Set("userId", p.UserID)
	c.Set("userRole", string(p.Role))
	c.Set("sessionId", p.SessionID)
}

// Auth rejects requests without a valid, unrevoked session.
func Auth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authentication required"})
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid or expired session"})
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid session is present and
// never rejects the request.
func OptionalAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFrom(c, cookieName); token != "" {
			if p, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setPrincipal(c, p)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authentication required"})
			return
		}
		if !p.IsAdmin() {
			c.AbortWithStatusJSON(403, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}

// UserID returns the authenticated user id or uuid.Nil.
func UserID(c *gin.Context) uuid.UUID {
	p, _ := GetPrincipal(c)
	return p.UserID
}
