package handler

import (
	"github.com/gin-gonic/gin"
)

// anonymousOperator 未启用操作员令牌时的调用方标识
const anonymousOperator = "anonymous"

// OperatorFromContext 从 Gin 上下文中提取 OperatorAuth 注入的操作员名称。
// 中间件未启用（本地单用户看板）时返回 anonymous。
func OperatorFromContext(c *gin.Context) string {
	v, exists := c.Get("operator")
	if !exists {
		return anonymousOperator
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return anonymousOperator
	}
	return s
}
