package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/pulsechat/internal/service"
	"github.com/d60-Lab/pulsechat/pkg/response"
)

// AccountKey 验签后登录地址（小写）在 gin context 里的键
const AccountKey = "account"

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// RequireAuth 必须携带有效 JWT，否则 401
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		account, err := auth.Verify(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(AccountKey, account)
		c.Next()
	}
}

// OptionalAuth 匿名可访问，带合法 token 时注入账户（用于 viewer 态的读接口）
func OptionalAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if account, err := auth.Verify(token); err == nil {
				c.Set(AccountKey, account)
			}
		}
		c.Next()
	}
}

// Account 取当前登录地址，没有则为空串
func Account(c *gin.Context) string {
	return c.GetString(AccountKey)
}
