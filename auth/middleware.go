package auth

import (
	"net/http"

	"school-voting-backend/models"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "auth_user"

// RequireAuth rejects requests without a valid session cookie and
// stores the parsed claims on the context for handlers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}
		c.Set(contextUserKey, claims)
		c.Next()
	}
}

// RequireAdmin additionally requires the admin role for
// session-mutating operations.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionClaims(c)
		if !ok || claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}
		c.Set(contextUserKey, claims)
		c.Next()
	}
}

// CurrentUser returns the claims stored by RequireAuth/RequireAdmin,
// or nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *Claims {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*Claims)
	return claims
}

func sessionClaims(c *gin.Context) (*Claims, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie == "" {
		return nil, false
	}
	claims, err := ParseToken(cookie)
	if err != nil {
		return nil, false
	}
	return claims, true
}
