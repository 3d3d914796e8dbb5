package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// dashboardCSP 看板只有服务端渲染的表单与内联样式，不加载任何脚本
const dashboardCSP = "default-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"

// SecurityHeaders 安全 HTTP 头中间件
// 计算结果随快照变化，API 响应禁止缓存（结果缓存由服务端 Redis 负责）
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", dashboardCSP)
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
