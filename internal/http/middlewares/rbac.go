package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole composes on top of RequireAuth. Flat string equality only; if
// the role model ever grows past user/admin this becomes a permission set.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if u.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Requires role '" + required + "'",
				},
			})
			return
		}
		c.Next()
	}
}
