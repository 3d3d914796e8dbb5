package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 计算类处理器写入的上下文键，请求日志据此记录本次使用的快照与选择
const (
	snapshotIDKey = "snapshot_id"
	selectionKey  = "gap_selection"
)

// SetGapContext 记录本次计算使用的快照 ID 与规范化后的选择（cip/degree/region）
func SetGapContext(c *gin.Context, snapshotID, selection string) {
	c.Set(snapshotIDKey, snapshotID)
	c.Set(selectionKey, selection)
}

// Logger 请求日志中间件（基于 Zap 结构化日志）
// 计算类请求额外带上 snapshot_id 与 selection，便于把结果对回具体的数据快照
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := c.GetString(snapshotIDKey); id != "" {
			fields = append(fields,
				zap.String("snapshot_id", id),
				zap.String("selection", c.GetString(selectionKey)),
			)
		}
		if operator := c.GetString("operator"); operator != "" {
			fields = append(fields, zap.String("operator", operator))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case statusCode == http.StatusServiceUnavailable:
			logger.Warn("数据集未就绪", fields...)
		case statusCode >= 500:
			logger.Error("请求处理失败", fields...)
		case statusCode >= 400:
			logger.Warn("客户端错误", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
