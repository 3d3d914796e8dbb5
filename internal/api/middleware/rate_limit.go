package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marky00100/program-gap/pkg/redis"
	"github.com/Marky00100/program-gap/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 按 客户端 IP + 路由 计数；导出与重新装载都要扫描整张快照，和普通查询共用同一额度。
// rdb 为 nil（未启用或连接失败）或 Redis 出错时降级放行。
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("gap:rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
