package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/internal/api/handler"
	"github.com/Marky00100/program-gap/internal/api/middleware"
	"github.com/Marky00100/program-gap/pkg/jwt"
	"github.com/Marky00100/program-gap/pkg/redis"
)

// maxBodyBytes 全局请求体上限；本服务没有上传接口
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.SetHTMLTemplate(handler.Templates())

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 看板 ──
	r.GET("/", h.Dashboard.Index)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window))
	{
		// 缺口计算模块
		v1.GET("/options", h.Gap.Options)
		v1.GET("/gap", h.Gap.Compute)
		v1.GET("/gap/detail", h.Gap.Detail)

		// 映射查询
		v1.GET("/programs/:cip/occupations", h.Gap.ProgramOccupations)
		v1.GET("/occupations/:soc/programs", h.Gap.OccupationPrograms)

		// 数据集模块（重新装载需要运维令牌，未配置密钥时放行）
		datasets := v1.Group("/datasets")
		{
			datasets.GET("/status", h.Dataset.Status)
			datasets.POST("/reload", middleware.OperatorAuth(jwtMgr), h.Dataset.Reload)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/gaps", h.Export.ExportGaps)
		}
	}

	return r
}
