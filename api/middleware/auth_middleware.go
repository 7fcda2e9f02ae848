package middleware

import (
	"net/http"
	"strings"

	"github.com/corvell/imagetier/api/common"
	"github.com/corvell/imagetier/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextIsAdminKey  = "is_admin"
)

// RequireAuth 解析 Bearer 令牌并注入请求者身份
// 未认证与无权限一样回 403，外部表现不区分两者
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusForbidden, "Authentication credentials were not provided")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondErrorAbort(c, http.StatusForbidden, "Authorization header format must be 'Bearer {token}'")
			return
		}

		claims, err := jwtService.ParseToken(parts[1])
		if err != nil {
			common.RespondErrorAbort(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		tokenType, _ := claims["type"].(string)
		if tokenType != auth.TokenTypeAccess {
			common.RespondErrorAbort(c, http.StatusForbidden, "Invalid token type")
			return
		}

		userIDValue, ok := claims["user_id"].(float64)
		if !ok {
			common.RespondErrorAbort(c, http.StatusForbidden, "Invalid token claims")
			return
		}

		username, _ := claims["username"].(string)
		isAdmin, _ := claims["is_admin"].(bool)

		c.Set(ContextUserIDKey, uint(userIDValue))
		c.Set(ContextUsernameKey, username)
		c.Set(ContextIsAdminKey, isAdmin)

		c.Next()
	}
}

// CurrentUserID 从上下文取出请求者ID
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint)
	return userID, ok
}
