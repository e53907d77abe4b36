package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/gin-gonic/gin"
)

// SessionCookie holds the access token for browser sessions
const SessionCookie = "tm_session"

const userKey = "user"

type UserResolver interface {
	UserFromAccessToken(ctx context.Context, token string) (*model.User, error)
}

// Authenticate resolves the caller from a bearer header or the session cookie.
// Anonymous requests pass through without a user.
func Authenticate(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token != "" {
			if user, err := resolver.UserFromAccessToken(c.Request.Context(), token); err == nil {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// RequireUser rejects anonymous API calls
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

// RequireStaff rejects API calls from non-staff users
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// SetUser is used by tests and by the login flow within a request
func SetUser(c *gin.Context, user *model.User) {
	c.Set(userKey, user)
}
