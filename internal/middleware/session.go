package middleware

import (
	"net/http"
	"strings"

	"eventify-backend/internal/session"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// Session resolves the caller from the session cookie or a Bearer token.
// Anonymous requests pass through without a user id.
func Session(manager session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				token = cookie
			}
		}
		if token != "" {
			if userID, err := manager.Verify(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless Session identified the caller.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok && id > 0
}

// SetUserID marks the request as authenticated; used after login within the same request.
func SetUserID(c *gin.Context, userID int) {
	c.Set(userIDKey, userID)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
