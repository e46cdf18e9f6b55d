package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorhub/internal/domain"
	"mentorhub/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the given role.
func RequireRole(required domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if domain.UserRole(role.(string)) != required {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// MentorOnly middleware requires the mentor role.
func MentorOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleMentor)
}

// MenteeOnly middleware requires the mentee role.
func MenteeOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleMentee)
}
