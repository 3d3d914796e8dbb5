package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/pkg/jwt"
	"github.com/Marky00100/program-gap/pkg/response"
)

// OperatorAuth 运维令牌认证中间件
// 从 Authorization: Bearer <token> 中提取并验证令牌
// 未配置 auth.operator_secret 时直接放行（本地单用户看板）
func OperatorAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtMgr == nil || !jwtMgr.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("operator", claims.Operator)

		c.Next()
	}
}
