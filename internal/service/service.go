package service

import (
	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/config"
	"github.com/Marky00100/program-gap/internal/dataset"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Gap     GapService
	Dataset DatasetService
	Export  ExportService
}

// NewService 创建 Service 聚合；cache 为 nil 时不缓存计算结果
func NewService(
	cfg *config.Config,
	catalog *dataset.Catalog,
	cache ResultCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		Gap:     NewGapService(catalog, cache, cfg.Redis.CacheTTL, logger),
		Dataset: NewDatasetService(catalog, cfg.Dataset.LoadTimeout, logger),
		Export:  NewExportService(catalog, logger),
	}
}
