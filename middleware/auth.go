package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
)

var errBadAuthHeader = errors.New("invalid authorization header format")

// bearerClaims returns nil claims when no Authorization header was sent.
func bearerClaims(c *gin.Context) (*utils.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errBadAuthHeader
	}

	return utils.ValidateToken(parts[1])
}

// RequireAuth rejects requests that did not resolve to a logged-in user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
