package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/dto"
)

// ── 数据集模块业务错误 ──

var (
	ErrReloadInProgress = errors.New("数据集正在重新装载，请稍后再试")
)

// DatasetService 数据集状态与手动重新装载
type DatasetService interface {
	Status(ctx context.Context) *dto.DatasetStatusResponse
	Reload(ctx context.Context, operator string) (*dto.DatasetStatusResponse, error)
}

type datasetService struct {
	catalog     *dataset.Catalog
	loadTimeout time.Duration
	logger      *zap.Logger
}

// NewDatasetService 创建 DatasetService 实例；loadTimeout<=0 时不额外限时
func NewDatasetService(catalog *dataset.Catalog, loadTimeout time.Duration, logger *zap.Logger) DatasetService {
	return &datasetService{catalog: catalog, loadTimeout: loadTimeout, logger: logger}
}

func (s *datasetService) Status(_ context.Context) *dto.DatasetStatusResponse {
	return toDatasetStatus(s.catalog.Status())
}

// Reload 手动重新装载；失败时计算保持停止，直到下一次成功装载
func (s *datasetService) Reload(ctx context.Context, operator string) (*dto.DatasetStatusResponse, error) {
	s.logger.Info("开始重新装载数据集", zap.String("operator", operator))

	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	if err := s.catalog.Load(ctx); err != nil {
		if errors.Is(err, dataset.ErrReloadInProgress) {
			return nil, ErrReloadInProgress
		}
		s.logger.Warn("手动重新装载失败", zap.String("operator", operator), zap.Error(err))
		return toDatasetStatus(s.catalog.Status()), ErrDatasetNotReady
	}

	return toDatasetStatus(s.catalog.Status()), nil
}

// ── 内部辅助方法 ──

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toDatasetStatus(st dataset.Status) *dto.DatasetStatusResponse {
	resp := &dto.DatasetStatusResponse{}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	if !st.LastAttemptAt.IsZero() {
		resp.LastAttemptAt = st.LastAttemptAt.Format(timeLayout)
	}

	t := st.Tables
	if t == nil {
		return resp
	}
	resp.Ready = true
	resp.SnapshotID = t.ID
	resp.Source = t.Source
	resp.LoadedAt = t.LoadedAt.Format(timeLayout)
	resp.Occupations = len(t.Occupations)
	resp.Graduates = len(t.Graduates)
	resp.Crosswalk = len(t.Crosswalk)
	resp.Inverse = len(t.Inverse)
	return resp
}
