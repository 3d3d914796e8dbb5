package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Marky00100/program-gap/internal/dataset"
	"github.com/Marky00100/program-gap/internal/dto"
	"github.com/Marky00100/program-gap/internal/model"
)

// ── 缺口计算模块业务错误 ──

var (
	// ErrDatasetNotReady 数据集未装载或装载失败，计算已停止
	ErrDatasetNotReady = errors.New("数据集未就绪")
)

// SnapshotProvider 当前只读快照的提供方（dataset.Catalog）
type SnapshotProvider interface {
	Current() (*dataset.Tables, error)
}

// ResultCache 计算结果缓存（Redis 实现；为 nil 时不缓存）
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// GapService 缺口计算业务接口
type GapService interface {
	Compute(ctx context.Context, req *dto.GapRequest) (*dto.GapResponse, error)
	Detail(ctx context.Context, req *dto.GapRequest) (*dto.GapDetailResponse, error)
	Options(ctx context.Context) (*dto.OptionsResponse, error)
	ProgramOccupations(ctx context.Context, cipCode string) (*dto.ProgramOccupationsResponse, error)
	OccupationPrograms(ctx context.Context, socCode string) (*dto.OccupationProgramsResponse, error)
}

type gapService struct {
	snapshots SnapshotProvider
	cache     ResultCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewGapService 创建 GapService 实例；cache 可为 nil
func NewGapService(snapshots SnapshotProvider, cache ResultCache, cacheTTL time.Duration, logger *zap.Logger) GapService {
	return &gapService{snapshots: snapshots, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── Compute ──────────────────────

func (s *gapService) Compute(ctx context.Context, req *dto.GapRequest) (*dto.GapResponse, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	sel := resolveSelection(t, req.CIPCode, req.DegreeLevel, req.Region)
	if sel.fallback {
		s.logger.Debug("学位层级无法识别，按学士计算", zap.String("degree", req.DegreeLevel))
	}

	// 缓存只存计算结果；兜底标记等请求相关字段每次按本次选择重新组装
	key := fmt.Sprintf("%s:%s:%s:%s", t.ID, sel.cip, sel.level, sel.region)
	if s.cache != nil {
		var cached GapResult
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("读取结果缓存失败", zap.String("key", key), zap.Error(err))
		} else if hit {
			return toGapResponse(t, sel, cached), nil
		}
	}

	result := ComputeGap(t, sel.cip, sel.level, sel.region)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("写入结果缓存失败", zap.String("key", key), zap.Error(err))
		}
	}

	return toGapResponse(t, sel, result), nil
}

// ────────────────────── Detail ──────────────────────

func (s *gapService) Detail(_ context.Context, req *dto.GapRequest) (*dto.GapDetailResponse, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	sel := resolveSelection(t, req.CIPCode, req.DegreeLevel, req.Region)
	b := ExplainGap(t, sel.cip, sel.level, sel.region)

	contributions := make([]dto.DemandContributionResponse, 0, len(b.Contributions))
	for _, c := range b.Contributions {
		contributions = append(contributions, dto.DemandContributionResponse{
			SOCCode:        c.SOCCode,
			Region:         c.Region,
			OpeningsGrowth: c.OpeningsGrowth,
			AttainmentPct:  c.AttainmentPct,
			Demand:         c.Demand,
		})
	}

	return &dto.GapDetailResponse{
		GapResponse:   *toGapResponse(t, sel, b.GapResult),
		Occupations:   b.Occupations,
		Contributions: contributions,
	}, nil
}

// ────────────────────── Options ──────────────────────

func (s *gapService) Options(_ context.Context) (*dto.OptionsResponse, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	levels := make([]string, 0, len(model.DegreeLevels))
	for _, l := range model.DegreeLevels {
		levels = append(levels, l.String())
	}

	return &dto.OptionsResponse{
		Programs:        t.Programs(),
		DegreeLevels:    levels,
		Regions:         t.Regions(),
		AllRegionsLabel: t.AllRegionsLabel,
		GraduateYear:    t.GraduateYear,
	}, nil
}

// ────────────────────── 映射查询 ──────────────────────

func (s *gapService) ProgramOccupations(_ context.Context, cipCode string) (*dto.ProgramOccupationsResponse, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cip := dataset.NormalizeCIP(cipCode)
	return &dto.ProgramOccupationsResponse{
		CIPCode:     cip,
		Occupations: sortedCodes(MatchingOccupations(t, cip)),
	}, nil
}

func (s *gapService) OccupationPrograms(_ context.Context, socCode string) (*dto.OccupationProgramsResponse, error) {
	t, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	soc := strings.TrimSpace(socCode)
	return &dto.OccupationProgramsResponse{
		SOCCode:  soc,
		Programs: t.ProgramsForOccupation(soc),
	}, nil
}

// ── 内部辅助方法 ──

func (s *gapService) snapshot() (*dataset.Tables, error) {
	t, err := s.snapshots.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetNotReady, err)
	}
	return t, nil
}

// selection 规范化后的选择器取值
type selection struct {
	cip      string
	level    model.DegreeLevel
	fallback bool
	region   string
}

func resolveSelection(t *dataset.Tables, cip, degree, region string) selection {
	level, ok := model.ParseDegreeLevel(degree)
	region = strings.TrimSpace(region)
	if region == "" {
		region = t.AllRegionsLabel
	}
	return selection{
		cip:      dataset.NormalizeCIP(cip),
		level:    level,
		fallback: !ok,
		region:   region,
	}
}

func toGapResponse(t *dataset.Tables, sel selection, r GapResult) *dto.GapResponse {
	return &dto.GapResponse{
		CIPCode:             sel.cip,
		DegreeLevel:         sel.level.String(),
		DegreeLevelFallback: sel.fallback,
		Region:              sel.region,
		GraduateYear:        t.GraduateYear,
		Ratio:               r.Ratio,
		RatioDisplay:        fmt.Sprintf("%.2f", r.Ratio),
		TotalGraduates:      r.TotalGraduates,
		AdjustedDemand:      r.AdjustedDemand,
		SnapshotID:          t.ID,
	}
}
