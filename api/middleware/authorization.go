package middleware

import (
	"net/http"

	"github.com/corvell/imagetier/api/common"
	"github.com/gin-gonic/gin"
)

// RequireAdmin 检查请求者是否为管理员
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextIsAdminKey)
		if !exists {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Not authenticated.")
			return
		}

		isAdmin, ok := value.(bool)
		if !ok || !isAdmin {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Administrator privileges required.")
			return
		}

		c.Next()
	}
}
