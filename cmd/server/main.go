package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/internal/api/handler"
	"github.com/Marky00100/program-gap/internal/api/router"
	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/repository"
	"github.com/Marky00100/program-gap/internal/service"
	"github.com/Marky00100/program-gap/pkg/database"
	"github.com/Marky00100/program-gap/pkg/jwt"
	applogger "github.com/Marky00100/program-gap/pkg/logger"
	"github.com/Marky00100/program-gap/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	issueToken := flag.String("issue-token", "", "为指定操作员签发重新装载令牌后退出")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		token, err := jwt.NewManager(&cfg.Auth).GenerateOperatorToken(*issueToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "签发令牌失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("dataset_source", cfg.Dataset.Source),
		zap.String("weights", cfg.Dataset.Weights.Provider),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：未启用或连接失败时不缓存、不限流）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，结果缓存与限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 4. 组装数据集装载器
	weights, err := dataset.NewWeightProvider(&cfg.Dataset.Weights)
	if err != nil {
		logger.Fatal("初始化学历权重失败", zap.Error(err))
	}

	var db *gorm.DB
	var loader dataset.Loader
	opts := dataset.OptionsFromConfig(&cfg.Dataset)

	if cfg.Dataset.Source == "postgres" {
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("数据库连接成功")

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if _, err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}

		loader = dataset.NewRepositoryLoader(repository.NewRepository(db), opts, weights, logger)
	} else {
		source, err := dataset.NewSource(context.Background(), &cfg.Dataset)
		if err != nil {
			logger.Fatal("初始化数据来源失败", zap.Error(err))
		}
		loader = dataset.NewSourceLoader(source, dataset.URIsFromConfig(&cfg.Dataset), opts, weights, logger)
	}

	// 5. 首次装载：失败时仍然启动，由看板展示错误并等待手动重新装载
	catalog := dataset.NewCatalog(loader, logger)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	if err := catalog.Load(loadCtx); err != nil {
		logger.Warn("首次装载数据集失败，计算接口返回 503 直到重新装载成功", zap.Error(err))
	}
	cancelLoad()

	// 6. 依赖注入: Catalog → Service → Handler
	var cache service.ResultCache
	if rdb != nil {
		cache = rdb
	}
	svc := service.NewService(cfg, catalog, cache, logger)
	h := handler.NewHandler(svc)

	jwtMgr := jwt.NewManager(&cfg.Auth)
	if !jwtMgr.Enabled() {
		logger.Info("未配置 auth.operator_secret，数据集重新装载接口不做鉴权")
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Dataset.LoadTimeout + 15*time.Second, // 重新装载在请求内同步完成
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
