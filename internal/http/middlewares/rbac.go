package middlewares

import (
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			abortMessage(c, http.StatusUnauthorized, "Missing identity context")
			return
		}

		if role != required {
			abortMessage(c, http.StatusForbidden, required.String()+" role required")
			return
		}
		c.Next()
	}
}
