// importer 从 HTTP / 文件 / S3 拉取源数据表并整体写入 PostgreSQL，
// 之后服务端可使用 dataset.source=postgres 从数据库装载。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/repository"
	"github.com/Marky00100/program-gap/pkg/database"
	applogger "github.com/Marky00100/program-gap/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	from := flag.String("from", "http", "源数据来源：http | file | s3")
	reset := flag.Bool("reset", false, "导入前回滚并重建源数据表")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *from, *reset, logger); err != nil {
		logger.Fatal("导入失败", zap.Error(err))
	}
}

func run(cfg *config.Config, from string, reset bool, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	defer cancel()

	// 1. 拉取源数据：入库保留全部年份，年份过滤由服务端装载时执行
	dsCfg := cfg.Dataset
	dsCfg.Source = from
	source, err := dataset.NewSource(ctx, &dsCfg)
	if err != nil {
		return err
	}

	opts := dataset.OptionsFromConfig(&dsCfg)
	opts.GraduateYear = 0
	// 占比列按原值入库，形式换算由服务端装载时按 dataset.weights.fraction_form 执行
	raw := dataset.ColumnWeights{Form: dataset.FractionPercent}
	loader := dataset.NewSourceLoader(source, dataset.URIsFromConfig(&dsCfg), opts, raw, logger)

	tables, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("拉取源数据失败: %w", err)
	}

	// 2. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	migrateFn := database.RunMigrations
	if reset {
		migrateFn = database.ResetMigrations
	}
	schemaVersion, err := migrateFn(sqlDB, logger)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 3. 单事务整体替换
	repo := repository.NewRepository(db)
	if err := repo.ReplaceDataset(ctx, tables.Occupations, tables.Graduates, tables.Crosswalk); err != nil {
		return fmt.Errorf("写入数据库失败: %w", err)
	}

	logger.Info("导入完成",
		zap.String("from", from),
		zap.Uint("schema_version", schemaVersion),
		zap.Int("occupations", len(tables.Occupations)),
		zap.Int("graduates", len(tables.Graduates)),
		zap.Int("crosswalk", len(tables.Crosswalk)),
	)
	return nil
}
