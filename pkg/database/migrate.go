package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable 与其他应用共用数据库时避免撞上默认的 schema_migrations
const migrationsTable = "gap_schema_migrations"

// ErrDirtySchema 上一次迁移中途失败，需人工修复后再导入或装载
var ErrDirtySchema = errors.New("数据库迁移处于 dirty 状态")

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	return m, nil
}

// RunMigrations 应用所有未执行的迁移，返回当前 schema 版本。
// dirty 状态直接报错：源数据表结构不完整时不允许写入或装载。
func RunMigrations(db *sql.DB, logger *zap.Logger) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w: version=%d", ErrDirtySchema, version)
	}

	logger.Info("数据库迁移完成", zap.Uint("version", version))
	return version, nil
}

// ResetMigrations 回滚全部迁移后重新执行，用于导入前重建源数据表（旧数据全部丢弃）
func ResetMigrations(db *sql.DB, logger *zap.Logger) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("回滚迁移失败: %w", err)
	}
	logger.Warn("已回滚全部迁移，源数据表将重建")

	return RunMigrations(db, logger)
}
